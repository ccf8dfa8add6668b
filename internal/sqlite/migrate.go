// This file implements the additive migrations run on every bootstrap.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is written to PRAGMA user_version after migrations.
const schemaVersion = 4

// tableMigration creates a table missing from an older store.
type tableMigration struct {
	table string
	ddl   string
}

// columnMigration adds a column missing from an older store.
type columnMigration struct {
	table  string
	column string
	ddl    string
}

// objectMigration creates a named index or trigger.
type objectMigration struct {
	kind string // "index" or "trigger"
	name string
	ddl  string
}

var tableMigrations = []tableMigration{
	{"reminder", `CREATE TABLE IF NOT EXISTS reminder (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    idea_id    INTEGER NOT NULL UNIQUE REFERENCES idea(id) ON DELETE CASCADE,
    due_at     INTEGER NOT NULL,
    note       TEXT,
    is_done    INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
    updated_at INTEGER
)`},
	{"attachment", `CREATE TABLE IF NOT EXISTS attachment (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    idea_id    INTEGER NOT NULL REFERENCES idea(id) ON DELETE CASCADE,
    file_name  TEXT    NOT NULL,
    file_path  TEXT    NOT NULL,
    mime_type  TEXT,
    size_bytes INTEGER,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
)`},
	{"settings", createSettingsTable},
}

var columnMigrations = []columnMigration{
	{"idea", "effort_minutes", "ALTER TABLE idea ADD COLUMN effort_minutes INTEGER"},
	{"idea", "deleted_at", "ALTER TABLE idea ADD COLUMN deleted_at INTEGER"},
	{"idea", "updated_at", "ALTER TABLE idea ADD COLUMN updated_at INTEGER"},
	{"tag", "color", "ALTER TABLE tag ADD COLUMN color TEXT"},
	{"tag", "name_fold", "ALTER TABLE tag ADD COLUMN name_fold TEXT"},
	{"reminder", "updated_at", "ALTER TABLE reminder ADD COLUMN updated_at INTEGER"},
	{"attachment", "mime_type", "ALTER TABLE attachment ADD COLUMN mime_type TEXT"},
	{"attachment", "size_bytes", "ALTER TABLE attachment ADD COLUMN size_bytes INTEGER"},
}

var objectMigrations = []objectMigration{
	{"index", "idx_idea_status", "CREATE INDEX IF NOT EXISTS idx_idea_status ON idea(status)"},
	{"index", "idx_idea_deleted_at", "CREATE INDEX IF NOT EXISTS idx_idea_deleted_at ON idea(deleted_at)"},
	{"index", "idx_idea_created_at", "CREATE INDEX IF NOT EXISTS idx_idea_created_at ON idea(created_at)"},
	{"index", "idx_idea_tag_tag", "CREATE INDEX IF NOT EXISTS idx_idea_tag_tag ON idea_tag(tag_id)"},
	{"index", "idx_reminder_due", "CREATE INDEX IF NOT EXISTS idx_reminder_due ON reminder(due_at)"},
	{"index", "idx_attachment_idea", "CREATE INDEX IF NOT EXISTS idx_attachment_idea ON attachment(idea_id)"},
	{"index", "idx_tag_name_fold", "CREATE INDEX IF NOT EXISTS idx_tag_name_fold ON tag(name_fold)"},
	{"trigger", "trg_reminder_touch_updated_at", `CREATE TRIGGER IF NOT EXISTS trg_reminder_touch_updated_at
AFTER UPDATE ON reminder
FOR EACH ROW
WHEN NEW.updated_at IS OLD.updated_at
BEGIN
    UPDATE reminder SET updated_at = strftime('%s', 'now') WHERE id = NEW.id;
END`},
}

// migrate brings an older store up to the current shape. Each step checks
// the schema catalog first and only adds what is missing. A failed step is
// logged and skipped; the base schema may already cover it.
func (b *Backend) migrate(ctx context.Context, db *sql.DB) {
	applied := 0

	for _, m := range tableMigrations {
		ok, err := schemaObjectExists(ctx, db, "table", m.table)
		if err == nil && !ok {
			_, err = db.ExecContext(ctx, m.ddl)
			if err == nil {
				applied++
				b.logger.Info("migration applied", "step", "create table", "table", m.table)
			}
		}
		if err != nil {
			b.logger.Warn("migration skipped", "step", "create table", "table", m.table, "error", err)
		}
	}

	for _, m := range columnMigrations {
		cols, err := tableColumns(ctx, db, m.table)
		if err == nil && len(cols) > 0 && !cols[m.column] {
			_, err = db.ExecContext(ctx, m.ddl)
			if err == nil {
				applied++
				b.logger.Info("migration applied", "step", "add column", "table", m.table, "column", m.column)
			}
		}
		if err != nil {
			b.logger.Warn("migration skipped", "step", "add column", "table", m.table, "column", m.column, "error", err)
		}
	}

	if n, err := backfillTagFold(ctx, db); err != nil {
		b.logger.Warn("migration skipped", "step", "backfill tag name_fold", "error", err)
	} else if n > 0 {
		applied++
		b.logger.Info("migration applied", "step", "backfill tag name_fold", "rows", n)
	}

	for _, m := range objectMigrations {
		ok, err := schemaObjectExists(ctx, db, m.kind, m.name)
		if err == nil && !ok {
			_, err = db.ExecContext(ctx, m.ddl)
			if err == nil {
				applied++
				b.logger.Info("migration applied", "step", "create "+m.kind, "name", m.name)
			}
		}
		if err != nil {
			b.logger.Warn("migration skipped", "step", "create "+m.kind, "name", m.name, "error", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		b.logger.Warn("migration skipped", "step", "set user_version", "error", err)
	}

	b.logger.Debug("migrations complete", "applied", applied, "version", schemaVersion)
}

// schemaObjectExists reports whether sqlite_master has an object of kind
// named name.
func schemaObjectExists(ctx context.Context, q querier, kind, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// tableColumns returns the column names of table. A missing table yields
// an empty set.
func tableColumns(ctx context.Context, q querier, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &primaryKey); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// backfillTagFold fills name_fold for tags written before the column
// existed.
func backfillTagFold(ctx context.Context, db *sql.DB) (int, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name FROM tag WHERE name_fold IS NULL OR name_fold = ''")
	if err != nil {
		return 0, err
	}
	type pending struct {
		id   int64
		fold string
	}
	var todo []pending
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return 0, err
		}
		todo = append(todo, pending{id: id, fold: foldName(name)})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return 0, err
	}
	if len(todo) == 0 {
		return 0, nil
	}

	err = withTx(ctx, db, func(tx *sql.Tx) error {
		for _, p := range todo {
			if _, err := tx.ExecContext(ctx, "UPDATE tag SET name_fold = ? WHERE id = ?", p.fold, p.id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(todo), nil
}
