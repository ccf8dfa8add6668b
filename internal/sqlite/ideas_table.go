// This file implements the idea repository: listings, CRUD, search and the
// trash lifecycle.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

var _ types.IdeaRepository = (*ideasTable)(nil)

// ideasTable implements IdeaRepository.
type ideasTable struct {
	backend *Backend
}

const ideaColumns = "id, title, body, priority, status, effort_minutes, created_at, updated_at, deleted_at"

// scanIdea hydrates one idea row. Unknown persisted priority and status
// values decode to their documented fallbacks.
func scanIdea(row rowScanner) (*types.Idea, error) {
	var (
		idea      types.Idea
		priority  int
		status    string
		effort    sql.NullInt64
		updatedAt sql.NullInt64
		deletedAt sql.NullInt64
	)
	if err := row.Scan(
		&idea.ID, &idea.Title, &idea.Body, &priority, &status,
		&effort, &idea.CreatedAt, &updatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	idea.Priority = types.PriorityFromInt(priority)
	idea.Status = types.IdeaStatusFromDB(status)
	idea.EffortMinutes = intPtr(effort)
	idea.UpdatedAt = int64Ptr(updatedAt)
	idea.DeletedAt = int64Ptr(deletedAt)
	return &idea, nil
}

func (t *ideasTable) list(ctx context.Context, op, query string, args ...any) ([]types.Idea, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryIdeas(ctx, db, op, query, args...)
}

func queryIdeas(ctx context.Context, q querier, op, query string, args ...any) ([]types.Idea, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, query, err)
	}
	defer rows.Close()

	ideas := []types.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, storageErr(op, query, err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, query, err)
	}
	return ideas, nil
}

func findIdea(ctx context.Context, q querier, id int64) (*types.Idea, error) {
	query := "SELECT " + ideaColumns + " FROM idea WHERE id = ?"
	idea, err := scanIdea(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find idea", query, err)
	}
	return idea, nil
}

// ListAll returns active ideas, newest first.
func (t *ideasTable) ListAll(ctx context.Context) ([]types.Idea, error) {
	return t.list(ctx, "list ideas",
		"SELECT "+ideaColumns+" FROM idea WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC")
}

// ListByStatus returns active ideas with the given status. StatusAll and
// the empty status skip the filter.
func (t *ideasTable) ListByStatus(ctx context.Context, status types.IdeaStatus) ([]types.Idea, error) {
	if status == "" || status == types.StatusAll {
		return t.ListAll(ctx)
	}
	if !status.Valid() {
		return nil, types.ErrInvalidStatus
	}
	return t.list(ctx, "list ideas by status",
		"SELECT "+ideaColumns+" FROM idea WHERE deleted_at IS NULL AND status = ? ORDER BY created_at DESC, id DESC",
		string(status))
}

// ListTrash returns trashed ideas, most recently trashed first.
func (t *ideasTable) ListTrash(ctx context.Context) ([]types.Idea, error) {
	return t.list(ctx, "list trash",
		"SELECT "+ideaColumns+" FROM idea WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC, id DESC")
}

// ListByTag returns active ideas linked to tagID, newest first.
func (t *ideasTable) ListByTag(ctx context.Context, tagID int64) ([]types.Idea, error) {
	return t.list(ctx, "list ideas by tag",
		`SELECT i.id, i.title, i.body, i.priority, i.status, i.effort_minutes, i.created_at, i.updated_at, i.deleted_at
		FROM idea i JOIN idea_tag it ON it.idea_id = i.id
		WHERE it.tag_id = ? AND i.deleted_at IS NULL
		ORDER BY i.created_at DESC, i.id DESC`,
		tagID)
}

// FindByID returns the idea or nil when no row has that id.
func (t *ideasTable) FindByID(ctx context.Context, id int64) (*types.Idea, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return findIdea(ctx, db, id)
}

// Insert validates and stores idea, returning the assigned id.
func (t *ideasTable) Insert(ctx context.Context, idea types.Idea) (int64, error) {
	if err := idea.Validate(); err != nil {
		return 0, err
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return t.insert(ctx, db, idea)
}

func (t *ideasTable) insert(ctx context.Context, db *sql.DB, idea types.Idea) (int64, error) {
	const stmt = "INSERT INTO idea (title, body, priority, status, effort_minutes, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	var id int64
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		var err error
		id, err = insertID(ctx, tx, "insert idea", stmt,
			idea.Title, idea.Body, int(idea.Priority), string(idea.Status),
			nullInt(idea.EffortMinutes), t.backend.nowUnix(),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// InsertReturning inserts idea and reads back the stored row.
func (t *ideasTable) InsertReturning(ctx context.Context, idea types.Idea) (*types.Idea, error) {
	if err := idea.Validate(); err != nil {
		return nil, err
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := t.insert(ctx, db, idea)
	if err != nil {
		return nil, err
	}
	return findIdea(ctx, db, id)
}

// Update overwrites the caller-editable fields of idea.ID.
func (t *ideasTable) Update(ctx context.Context, idea types.Idea) (int64, error) {
	if err := idea.Validate(); err != nil {
		return 0, err
	}
	return t.exec(ctx, "update idea",
		"UPDATE idea SET title = ?, body = ?, priority = ?, status = ?, effort_minutes = ? WHERE id = ?",
		idea.Title, idea.Body, int(idea.Priority), string(idea.Status), nullInt(idea.EffortMinutes), idea.ID)
}

// ChangeStatus moves an idea to another workflow column.
func (t *ideasTable) ChangeStatus(ctx context.Context, id int64, status types.IdeaStatus) (int64, error) {
	if !status.Valid() {
		return 0, types.ErrInvalidStatus
	}
	return t.exec(ctx, "change idea status",
		"UPDATE idea SET status = ? WHERE id = ?", string(status), id)
}

// SetEffort sets or clears the effort estimate.
func (t *ideasTable) SetEffort(ctx context.Context, id int64, minutes *int) (int64, error) {
	if err := types.ValidateEffort(minutes); err != nil {
		return 0, err
	}
	return t.exec(ctx, "set idea effort",
		"UPDATE idea SET effort_minutes = ? WHERE id = ?", nullInt(minutes), id)
}

// Search returns active ideas whose title or body contains query, ignoring
// case. Both sides are compared after Unicode case folding, and LIKE
// wildcards in query match literally.
func (t *ideasTable) Search(ctx context.Context, query string) ([]types.Idea, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return t.ListAll(ctx)
	}
	pattern := "%" + escapeLike(foldText(query)) + "%"
	return t.list(ctx, "search ideas",
		`SELECT `+ideaColumns+` FROM idea
		WHERE deleted_at IS NULL
		AND (`+foldFunc+`(title) LIKE ? ESCAPE '\' OR `+foldFunc+`(body) LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC`,
		pattern, pattern)
}

// escapeLike escapes LIKE metacharacters with a backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// MoveToTrash stamps deleted_at. Trashing an already trashed idea keeps
// the original timestamp and reports zero rows.
func (t *ideasTable) MoveToTrash(ctx context.Context, id int64) (int64, error) {
	return t.exec(ctx, "move idea to trash",
		"UPDATE idea SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", t.backend.nowUnix(), id)
}

// Restore clears deleted_at.
func (t *ideasTable) Restore(ctx context.Context, id int64) (int64, error) {
	return t.exec(ctx, "restore idea",
		"UPDATE idea SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
}

// Purge hard-deletes the idea. Foreign keys cascade the row delete to tag
// links, the reminder and attachment rows; the copied attachment files are
// then removed from disk best-effort.
func (t *ideasTable) Purge(ctx context.Context, id int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	paths, err := attachmentPaths(ctx, db, id)
	if err != nil {
		return 0, err
	}

	n, err := execAffected(ctx, db, "purge idea", "DELETE FROM idea WHERE id = ?", id)
	if err != nil || n == 0 {
		return n, err
	}

	root := filepath.Join(t.backend.dataDir, attachmentsDir)
	for _, p := range paths {
		t.backend.removeManagedFile(root, p)
	}
	dir := filepath.Join(root, strconv.FormatInt(id, 10))
	if err := os.RemoveAll(dir); err != nil {
		t.backend.logger.Warn("removing attachment dir", "idea_id", id, "dir", dir, "error", err)
	}
	return n, nil
}

func (t *ideasTable) exec(ctx context.Context, op, stmt string, args ...any) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return execAffected(ctx, db, op, stmt, args...)
}
