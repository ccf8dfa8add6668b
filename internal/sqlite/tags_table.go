// This file implements the tag repository and idea-tag associations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

var _ types.TagRepository = (*tagsTable)(nil)

// tagsTable implements TagRepository.
type tagsTable struct {
	backend *Backend
}

const tagColumns = "id, name, color, created_at"

func scanTag(row rowScanner) (*types.Tag, error) {
	var (
		tag   types.Tag
		color sql.NullString
	)
	if err := row.Scan(&tag.ID, &tag.Name, &color, &tag.CreatedAt); err != nil {
		return nil, err
	}
	tag.Color = stringPtr(color)
	return &tag, nil
}

func queryTags(ctx context.Context, q querier, op, query string, args ...any) ([]types.Tag, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, query, err)
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, storageErr(op, query, err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, query, err)
	}
	return tags, nil
}

func findTagWhere(ctx context.Context, q querier, op, where string, args ...any) (*types.Tag, error) {
	query := "SELECT " + tagColumns + " FROM tag WHERE " + where
	tag, err := scanTag(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, query, err)
	}
	return tag, nil
}

// findTagByName looks a tag up by folded name. Rows written before
// name_fold existed are matched by a NOCASE comparison of the raw name.
func findTagByName(ctx context.Context, q querier, name string) (*types.Tag, error) {
	return findTagWhere(ctx, q, "find tag by name",
		"name_fold = ? OR (name_fold IS NULL AND name = ? COLLATE NOCASE) ORDER BY id LIMIT 1",
		foldName(name), strings.TrimSpace(name))
}

// ListAll returns every tag ordered by name, ignoring case.
func (t *tagsTable) ListAll(ctx context.Context) ([]types.Tag, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryTags(ctx, db, "list tags",
		"SELECT "+tagColumns+" FROM tag ORDER BY name COLLATE NOCASE, id")
}

// FindByID returns the tag or nil when no row has that id.
func (t *tagsTable) FindByID(ctx context.Context, id int64) (*types.Tag, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return findTagWhere(ctx, db, "find tag", "id = ?", id)
}

// Insert stores a new tag. The name is trimmed; blank names and names
// already taken ignoring case are rejected.
func (t *tagsTable) Insert(ctx context.Context, tag types.Tag) (int64, error) {
	name := strings.TrimSpace(tag.Name)
	if name == "" {
		return 0, types.ErrInvalidName
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var id int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := findTagByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrDuplicateName
		}
		id, err = insertTag(ctx, tx, name, tag.Color, t.backend.nowUnix())
		return err
	})
	return id, err
}

func insertTag(ctx context.Context, q querier, name string, color *string, now int64) (int64, error) {
	return insertID(ctx, q, "insert tag",
		"INSERT INTO tag (name, name_fold, color, created_at) VALUES (?, ?, ?, ?)",
		name, foldName(name), nullString(color), now)
}

// Update renames or recolors a tag under the same rules as Insert. The tag
// itself is excluded from the duplicate check.
func (t *tagsTable) Update(ctx context.Context, tag types.Tag) (int64, error) {
	name := strings.TrimSpace(tag.Name)
	if name == "" {
		return 0, types.ErrInvalidName
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := findTagByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != tag.ID {
			return types.ErrDuplicateName
		}
		n, err = execAffected(ctx, tx, "update tag",
			"UPDATE tag SET name = ?, name_fold = ?, color = ? WHERE id = ?",
			name, foldName(name), nullString(tag.Color), tag.ID)
		return err
	})
	return n, err
}

// Delete removes the tag's associations and then the tag.
func (t *tagsTable) Delete(ctx context.Context, id int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := execAffected(ctx, tx, "delete tag links",
			"DELETE FROM idea_tag WHERE tag_id = ?", id); err != nil {
			return err
		}
		var err error
		n, err = execAffected(ctx, tx, "delete tag", "DELETE FROM tag WHERE id = ?", id)
		return err
	})
	return n, err
}

// ListForIdea returns the tags linked to an idea, ordered by name.
func (t *tagsTable) ListForIdea(ctx context.Context, ideaID int64) ([]types.Tag, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryTags(ctx, db, "list tags for idea",
		`SELECT t.id, t.name, t.color, t.created_at
		FROM tag t JOIN idea_tag it ON it.tag_id = t.id
		WHERE it.idea_id = ?
		ORDER BY t.name COLLATE NOCASE, t.id`,
		ideaID)
}

// Attach links tagID to ideaID. An existing link is left as is.
func (t *tagsTable) Attach(ctx context.Context, ideaID, tagID int64) error {
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()
	_, err = execAffected(ctx, db, "attach tag",
		"INSERT OR IGNORE INTO idea_tag (idea_id, tag_id) VALUES (?, ?)", ideaID, tagID)
	return err
}

// Detach removes one idea-tag link.
func (t *tagsTable) Detach(ctx context.Context, ideaID, tagID int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return execAffected(ctx, db, "detach tag",
		"DELETE FROM idea_tag WHERE idea_id = ? AND tag_id = ?", ideaID, tagID)
}

// EnsureExists returns the tag matching name ignoring case, creating it
// with the trimmed name when none exists.
func (t *tagsTable) EnsureExists(ctx context.Context, name string) (*types.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.ErrInvalidName
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var tag *types.Tag
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		var err error
		tag, err = ensureTag(ctx, tx, name, t.backend.nowUnix())
		return err
	})
	return tag, err
}

// ensureTag is EnsureExists on an open querier.
func ensureTag(ctx context.Context, q querier, name string, now int64) (*types.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}
	tag, err := findTagByName(ctx, q, name)
	if err != nil || tag != nil {
		return tag, err
	}
	id, err := insertTag(ctx, q, name, nil, now)
	if err != nil {
		return nil, err
	}
	tag, err = findTagWhere(ctx, q, "find tag", "id = ?", id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return findTagByName(ctx, q, name)
	}
	return tag, nil
}

// ReplaceAllForIdea makes names the exact tag set of ideaID. Blank names
// are skipped and missing tags are created. Everything runs in one
// transaction; any failure leaves the previous tag set in place.
func (t *tagsTable) ReplaceAllForIdea(ctx context.Context, ideaID int64, names []string) error {
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	now := t.backend.nowUnix()
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := execAffected(ctx, tx, "clear idea tags",
			"DELETE FROM idea_tag WHERE idea_id = ?", ideaID); err != nil {
			return err
		}
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			tag, err := ensureTag(ctx, tx, name, now)
			if err != nil {
				return err
			}
			if _, err := execAffected(ctx, tx, "attach tag",
				"INSERT OR IGNORE INTO idea_tag (idea_id, tag_id) VALUES (?, ?)", ideaID, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
