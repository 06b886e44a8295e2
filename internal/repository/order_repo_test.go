package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
)

func TestOrderRepository_PrependAndList(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	repo := NewOrderRepository(store, logger.Discard())
	require.NoError(t, repo.Load(ctx))

	first := &model.Order{ID: "o1", CustomerID: 1, Date: time.Now(), Status: model.OrderCompleted}
	second := &model.Order{ID: "o2", CustomerID: 2, Date: time.Now(), Status: model.OrderCompleted}
	third := &model.Order{ID: "o3", CustomerID: 1, Date: time.Now(), Status: model.OrderCompleted}
	require.NoError(t, repo.Prepend(ctx, first))
	require.NoError(t, repo.Prepend(ctx, second))
	require.NoError(t, repo.Prepend(ctx, third))

	all := repo.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"o3", "o2", "o1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine := repo.ListByCustomer(1)
	require.Len(t, mine, 2)
	assert.Equal(t, "o3", mine[0].ID)
	assert.Equal(t, "o1", mine[1].ID)

	assert.Empty(t, repo.ListByCustomer(99))

	reloaded := NewOrderRepository(store, logger.Discard())
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), 3)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(kvstore.NewMemoryStore(0), logger.Discard())
	require.NoError(t, repo.Prepend(ctx, &model.Order{ID: "o1", Status: model.OrderCompleted}))

	updated, err := repo.UpdateStatus(ctx, "o1", model.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, updated.Status)

	found, err := repo.GetByID("o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, found.Status)

	_, err = repo.UpdateStatus(ctx, "missing", model.OrderShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
