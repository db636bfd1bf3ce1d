package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildhaven/menagerie/internal/storage/postgres"
	"github.com/wildhaven/menagerie/internal/testutil"
)

func TestCooldownStore_RoundTrip(t *testing.T) {
	pool := testutil.NewPool(t)
	store := postgres.NewCooldownStore(pool)
	ctx := context.Background()

	// Never-used pairs report the zero time.
	last, err := store.LastUsed(ctx, "fox", "attack")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	first := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, "fox", "attack", first))

	last, err = store.LastUsed(ctx, "fox", "attack")
	require.NoError(t, err)
	assert.True(t, first.Equal(last))

	// Touching again upserts rather than duplicating.
	second := first.Add(30 * time.Second)
	require.NoError(t, store.Touch(ctx, "fox", "attack", second))

	last, err = store.LastUsed(ctx, "fox", "attack")
	require.NoError(t, err)
	assert.True(t, second.Equal(last))
}

func TestCooldownStore_PairsAreIndependent(t *testing.T) {
	pool := testutil.NewPool(t)
	store := postgres.NewCooldownStore(pool)
	ctx := context.Background()

	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, "fox", "attack", at))

	last, err := store.LastUsed(ctx, "fox", "flee")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	last, err = store.LastUsed(ctx, "badger", "attack")
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}
