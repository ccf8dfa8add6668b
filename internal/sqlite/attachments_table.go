// This file implements the attachment store: file copies under
// attachments/<ideaID>/ paired with attachment rows.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

var _ types.AttachmentStore = (*attachmentsTable)(nil)

// attachmentsTable implements AttachmentStore.
type attachmentsTable struct {
	backend *Backend
}

const attachmentColumns = "id, idea_id, file_name, file_path, mime_type, size_bytes, created_at"

func scanAttachment(row rowScanner) (*types.Attachment, error) {
	var (
		a    types.Attachment
		mime sql.NullString
		size sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.IdeaID, &a.FileName, &a.FilePath, &mime, &size, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.MimeType = stringPtr(mime)
	a.SizeBytes = int64Ptr(size)
	return &a, nil
}

func findAttachment(ctx context.Context, q querier, id int64) (*types.Attachment, error) {
	query := "SELECT " + attachmentColumns + " FROM attachment WHERE id = ?"
	a, err := scanAttachment(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find attachment", query, err)
	}
	return a, nil
}

// attachmentPaths returns the stored file paths of an idea's attachments.
func attachmentPaths(ctx context.Context, q querier, ideaID int64) ([]string, error) {
	const query = "SELECT file_path FROM attachment WHERE idea_id = ?"
	rows, err := q.QueryContext(ctx, query, ideaID)
	if err != nil {
		return nil, storageErr("list attachment paths", query, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, storageErr("list attachment paths", query, err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list attachment paths", query, err)
	}
	return paths, nil
}

func (t *attachmentsTable) root() string {
	return filepath.Join(t.backend.dataDir, attachmentsDir)
}

// ListForIdea returns an idea's attachments in the order they were added.
func (t *attachmentsTable) ListForIdea(ctx context.Context, ideaID int64) ([]types.Attachment, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := "SELECT " + attachmentColumns + " FROM attachment WHERE idea_id = ? ORDER BY created_at ASC, id ASC"
	rows, err := db.QueryContext(ctx, query, ideaID)
	if err != nil {
		return nil, storageErr("list attachments", query, err)
	}
	defer rows.Close()

	out := []types.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, storageErr("list attachments", query, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list attachments", query, err)
	}
	return out, nil
}

// FindByID returns the attachment or nil when no row has that id.
func (t *attachmentsTable) FindByID(ctx context.Context, id int64) (*types.Attachment, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return findAttachment(ctx, db, id)
}

// InsertFromSource copies sourcePath to attachments/<ideaID>/<base name>,
// replacing any file of that name, and records the copy. MIME type and size
// are read from the copy; either is left nil when detection fails. If the
// row cannot be written the copy is removed again.
func (t *attachmentsTable) InsertFromSource(ctx context.Context, ideaID int64, sourcePath string) (*types.Attachment, error) {
	if ideaID <= 0 || strings.TrimSpace(sourcePath) == "" {
		return nil, types.ErrInvalidAttachment
	}
	src, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidAttachment, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidAttachment, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", types.ErrInvalidAttachment, src)
	}

	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	idea, err := findIdea(ctx, db, ideaID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, fmt.Errorf("%w: idea %d does not exist", types.ErrInvalidAttachment, ideaID)
	}

	dir := filepath.Join(t.root(), strconv.FormatInt(ideaID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment dir: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(src))

	copied := false
	if !sameFile(src, dst) {
		if err := copyFileAtomic(src, dst); err != nil {
			return nil, fmt.Errorf("copying attachment: %w", err)
		}
		copied = true
	}

	a := types.Attachment{
		IdeaID:    ideaID,
		FileName:  filepath.Base(dst),
		FilePath:  dst,
		MimeType:  t.detectMime(dst),
		SizeBytes: t.statSize(dst),
		CreatedAt: t.backend.nowUnix(),
	}
	id, err := insertAttachment(ctx, db, a)
	if err != nil {
		if copied {
			t.backend.removeManagedFile(t.root(), dst)
		}
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (t *attachmentsTable) detectMime(path string) *string {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		t.backend.logger.Debug("mime detection failed", "path", path, "error", err)
		return nil
	}
	s := m.String()
	return &s
}

func (t *attachmentsTable) statSize(path string) *int64 {
	info, err := os.Stat(path)
	if err != nil {
		t.backend.logger.Debug("size stat failed", "path", path, "error", err)
		return nil
	}
	n := info.Size()
	return &n
}

func insertAttachment(ctx context.Context, q querier, a types.Attachment) (int64, error) {
	return insertID(ctx, q, "insert attachment",
		"INSERT INTO attachment (idea_id, file_name, file_path, mime_type, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.IdeaID, a.FileName, a.FilePath, nullString(a.MimeType), nullInt64(a.SizeBytes), a.CreatedAt)
}

// Insert records an attachment whose file already sits in the managed
// tree. FilePath must be absolute and inside attachments/.
func (t *attachmentsTable) Insert(ctx context.Context, a types.Attachment) (int64, error) {
	if a.IdeaID <= 0 || strings.TrimSpace(a.FileName) == "" {
		return 0, types.ErrInvalidAttachment
	}
	if !filepath.IsAbs(a.FilePath) {
		return 0, fmt.Errorf("%w: file path must be absolute", types.ErrInvalidAttachment)
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	if !withinDir(t.root(), a.FilePath) {
		return 0, fmt.Errorf("%w: file path outside attachments dir", types.ErrInvalidAttachment)
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = t.backend.nowUnix()
	}
	return insertAttachment(ctx, db, a)
}

// DeleteByID deletes the row, then removes the managed file. File removal
// failures are logged only.
func (t *attachmentsTable) DeleteByID(ctx context.Context, id int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	a, err := findAttachment(ctx, db, id)
	if err != nil || a == nil {
		return 0, err
	}
	n, err := execAffected(ctx, db, "delete attachment", "DELETE FROM attachment WHERE id = ?", id)
	if err != nil || n == 0 {
		return n, err
	}
	t.backend.removeManagedFile(t.root(), a.FilePath)
	return n, nil
}
