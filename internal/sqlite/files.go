// This file provides the filesystem side of attachments: atomic copies into
// the managed tree and best-effort removal.
package sqlite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// copyFileAtomic copies src to dst using the temp-file, fsync, rename
// pattern, so dst is either the old file or the complete new one.
// An existing dst is replaced.
func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	tmpName := filepath.Join(filepath.Dir(dst), "."+uuid.NewString()+".part")
	tmp, err := os.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copying data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// sameFile reports whether a and b name the same file on disk.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// withinDir reports whether path lies strictly inside dir. Both must be
// absolute.
func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// removeManagedFile deletes path if it lies inside root. Failures are
// logged and otherwise ignored.
func (b *Backend) removeManagedFile(root, path string) {
	if path == "" {
		return
	}
	if !filepath.IsAbs(path) || !withinDir(root, path) {
		b.logger.Warn("skipping removal outside attachments dir", "path", path)
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		b.logger.Warn("removing attachment file", "path", path, "error", err)
	}
}
