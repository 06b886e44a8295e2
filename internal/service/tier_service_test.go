package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func setupTierService(t *testing.T) (*TierService, *storeEnv) {
	t.Helper()

	env := newStoreEnv(t)
	env.addProduct(t, testutil.TestProduct("p1"))
	env.addProduct(t, testutil.TestProduct("p2"))
	return NewTierService(env.tiers, env.products, testLogger()), env
}

func TestTierService_CRUD(t *testing.T) {
	svc, _ := setupTierService(t)
	ctx := context.Background()

	tier, err := svc.Create(ctx, &dto.TierRequest{
		Name:               "Starter",
		Price:              299,
		AccessMode:         "specific",
		UnlockedProductIDs: []string{"p1", "p1", "p2"},
		Features:           []string{"Two courses"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tier.ID)
	assert.Equal(t, []string{"p1", "p2"}, tier.UnlockedProductIDs)

	updated, err := svc.Update(ctx, tier.ID, &dto.TierRequest{
		Name:               "Everything",
		Price:              999,
		AccessMode:         "all",
		UnlockedProductIDs: []string{"p1"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccessAll, updated.AccessMode)
	assert.Empty(t, updated.UnlockedProductIDs)
	assert.Equal(t, tier.CreatedAt, updated.CreatedAt)

	require.Len(t, svc.List(), 1)
	require.NoError(t, svc.Delete(ctx, tier.ID))
	_, err = svc.Get(tier.ID)
	assert.Equal(t, ErrTierNotFound, err)
	assert.Equal(t, ErrTierNotFound, svc.Delete(ctx, tier.ID))
}

func TestTierService_Validation(t *testing.T) {
	svc, _ := setupTierService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.TierRequest{Name: "Ghost", AccessMode: "specific", UnlockedProductIDs: []string{"missing"}})
	assert.Equal(t, ErrProductNotFound, err)

	_, err = svc.Create(ctx, &dto.TierRequest{Name: "Weird", AccessMode: "some"})
	assert.Equal(t, ErrInvalidTier, err)

	_, err = svc.Update(ctx, "missing", &dto.TierRequest{Name: "x", AccessMode: "none"})
	assert.Equal(t, ErrTierNotFound, err)
}
