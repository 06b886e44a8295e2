package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
)

func TestPurchaseRepository_Add(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	repo := NewPurchaseRepository(store, logger.Discard())

	empty, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = repo.Add(ctx, 7, "p1")
	require.NoError(t, err)
	_, err = repo.Add(ctx, 7, "tier-gold")
	require.NoError(t, err)
	got, err := repo.Add(ctx, 7, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "tier-gold"}, got.IDs())

	// 用户之间互不影响
	other, err := repo.Get(ctx, 8)
	require.NoError(t, err)
	assert.False(t, other.Has("p1"))

	raw, err := store.Get(ctx, "purchased_ids:7")
	require.NoError(t, err)
	assert.JSONEq(t, `["p1","tier-gold"]`, string(raw))
}

func TestPurchaseRepository_Malformed(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, "purchased_ids:1", []byte(`{"oops":true}`)))

	repo := NewPurchaseRepository(store, logger.Discard())
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestPurchaseRepository_PersistFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRepository(kvstore.NewMemoryStore(4), logger.Discard())

	got, err := repo.Add(ctx, 1, "some-long-product-id")
	assert.ErrorIs(t, err, ErrPersist)
	require.NotNil(t, got)
	assert.True(t, got.Has("some-long-product-id"))

	// 内存中仍可读取
	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, again.Has("some-long-product-id"))
}
