//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Build targets for mindstore.
//
// Usage:
//
//	mage test:all     Run every test package
//	mage test:unit    Run tests without the race detector or cache
//	mage test:golden  Rewrite parser golden files
//	mage test:cover   Write coverage.out and print a summary
//	mage vet          Run go vet
//	mage lint         Run golangci-lint
//	mage tidy         Run go mod tidy
//	mage clean        Remove test artifacts
//	mage stats        Print Go LOC and documentation word counts
package main

import (
	"os"

	"github.com/magefile/mage/sh"
)

const (
	binGo        = "go"
	coverProfile = "coverage.out"
)

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV(binGo, "mod", "tidy")
}

// Clean removes test artifacts.
func Clean() error {
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean", "-testcache")
}
