package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

var _ types.SettingsRepository = (*settingsTable)(nil)

const createSettingsTable = `CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// settingsTable implements SettingsRepository.
type settingsTable struct {
	backend *Backend
}

// open acquires the database and makes sure the settings table exists.
// The CREATE runs once per attach.
func (t *settingsTable) open(ctx context.Context) (*sql.DB, func(), error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, nil, err
	}

	t.backend.settingsMu.Lock()
	defer t.backend.settingsMu.Unlock()
	if !t.backend.settingsReady {
		if _, err := db.ExecContext(ctx, createSettingsTable); err != nil {
			release()
			return nil, nil, storageErr("create settings table", createSettingsTable, err)
		}
		t.backend.settingsReady = true
	}
	return db, release, nil
}

// Get returns the value stored under key, or def when there is none.
func (t *settingsTable) Get(ctx context.Context, key, def string) (string, error) {
	v, ok, err := t.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Lookup returns the value stored under key and whether it exists.
func (t *settingsTable) Lookup(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, types.ErrInvalidKey
	}
	db, release, err := t.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer release()

	const query = "SELECT value FROM settings WHERE key = ?"
	var v string
	err = db.QueryRowContext(ctx, query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get setting", query, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any previous value.
func (t *settingsTable) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return types.ErrInvalidKey
	}
	db, release, err := t.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = execAffected(ctx, db, "set setting",
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

// Delete removes key.
func (t *settingsTable) Delete(ctx context.Context, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, types.ErrInvalidKey
	}
	db, release, err := t.open(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return execAffected(ctx, db, "delete setting", "DELETE FROM settings WHERE key = ?", key)
}
