//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// goldenPkg holds the statement parser and its golden files.
const goldenPkg = "./internal/sqlite/"

// All vets, then runs all tests with the race detector.
func (Test) All() error {
	mg.Deps(Vet)
	return sh.RunV(binGo, "test", "-race", "-v", "./...")
}

// Unit runs all tests once, bypassing the test cache.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-count=1", "./...")
}

// Golden rewrites the parser golden files from current output.
func (Test) Golden() error {
	if err := sh.RunV(binGo, "test", goldenPkg, "-run", "TestSplitStatementsGolden", "-update"); err != nil {
		return err
	}
	fmt.Println("Golden files updated; review the diff under internal/sqlite/testdata/golden.")
	return nil
}

// Cover writes a coverage profile and prints per-function coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}
