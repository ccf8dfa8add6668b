package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

func TestSettingsTable_GetSetDelete(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()
	s := b.Settings()

	v, err := s.Get(ctx, "ui.startup_view", "Inbox")
	require.NoError(t, err)
	assert.Equal(t, "Inbox", v)

	_, found, err := s.Lookup(ctx, "ui.startup_view")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "ui.startup_view", "Kanban"))
	require.NoError(t, s.Set(ctx, "ui.startup_view", "Trash"))

	v, err = s.Get(ctx, "ui.startup_view", "Inbox")
	require.NoError(t, err)
	assert.Equal(t, "Trash", v)
	assert.Equal(t, 1, countRows(t, b, "SELECT COUNT(*) FROM settings"))

	require.NoError(t, s.Set(ctx, "empty", ""))
	v, found, err = s.Lookup(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found, "an empty value is still a stored value")
	assert.Equal(t, "", v)

	n, err := s.Delete(ctx, "ui.startup_view")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Delete(ctx, "ui.startup_view")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSettingsTable_BlankKey(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()

	_, err := b.Settings().Get(ctx, " ", "x")
	assert.ErrorIs(t, err, types.ErrInvalidKey)
	assert.ErrorIs(t, b.Settings().Set(ctx, "", "x"), types.ErrInvalidKey)
	_, err = b.Settings().Delete(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestSettingsTable_CreatesTableOnFirstUse(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()

	_, err := b.Settings().Get(ctx, "warm", "")
	require.NoError(t, err)
	_, err = b.db.Exec("DROP TABLE settings")
	require.NoError(t, err)
	b.settingsMu.Lock()
	b.settingsReady = false
	b.settingsMu.Unlock()

	require.NoError(t, b.Settings().Set(ctx, "reminders.refresh_seconds", "30"))
	v, err := b.Settings().Get(ctx, "reminders.refresh_seconds", "")
	require.NoError(t, err)
	assert.Equal(t, "30", v)
}
