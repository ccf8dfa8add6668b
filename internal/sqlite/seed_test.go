package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

func TestLoadSeedIdeas(t *testing.T) {
	ideas, err := loadSeedIdeas()
	require.NoError(t, err)
	require.Len(t, ideas, 3)

	assert.Equal(t, types.StatusInbox, ideas[0].Status)
	assert.Equal(t, types.PriorityHighest, ideas[0].Priority)
	assert.Equal(t, types.StatusDoing, ideas[1].Status)
	assert.Equal(t, types.StatusArchived, ideas[2].Status)
	for _, idea := range ideas {
		assert.NoError(t, idea.Validate())
	}
}

func TestSeedIdeasIfEmpty(t *testing.T) {
	b, clock := setupBackend(t)
	ctx := context.Background()

	n, err := seedIdeasIfEmpty(ctx, b.db, clock.Now().Unix())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = seedIdeasIfEmpty(ctx, b.db, clock.Now().Unix())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, countRows(t, b, "SELECT COUNT(*) FROM idea"))
}

func TestSeedSkipsStoreWithTrashOnly(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()

	id := mustInsertIdea(t, b, "trashed")
	_, err := b.Ideas().MoveToTrash(ctx, id)
	require.NoError(t, err)

	n, err := seedIdeasIfEmpty(ctx, b.db, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
