package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/testutil"
)

// brokenStore 读写都失败
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStore) Set(context.Context, string, []byte) error   { return errBroken }
func (brokenStore) Remove(context.Context, string) error        { return errBroken }

func TestCollection_LoadMissingUsesEmpty(t *testing.T) {
	repo := NewTierRepository(kvstore.NewMemoryStore(0), logger.Discard())
	require.NoError(t, repo.Load(context.Background()))

	tiers := repo.List()
	assert.NotNil(t, tiers)
	assert.Empty(t, tiers)
}

func TestCollection_LoadMalformedFallsBack(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	require.NoError(t, store.Set(context.Background(), KeyCoupons, []byte("{not json")))

	repo := NewCouponRepository(store, logger.Discard())
	require.NoError(t, repo.Load(context.Background()))
	assert.Empty(t, repo.List())
}

func TestCollection_LoadNullIsEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	require.NoError(t, store.Set(context.Background(), KeyOrders, []byte("null")))

	repo := NewOrderRepository(store, logger.Discard())
	require.NoError(t, repo.Load(context.Background()))
	assert.NotNil(t, repo.List())
}

func TestCollection_LoadStoreError(t *testing.T) {
	repo := NewProductRepository(brokenStore{}, logger.Discard())
	err := repo.Load(context.Background())
	assert.ErrorIs(t, err, errBroken)
}

func TestCollection_PersistFailureKeepsMemoryState(t *testing.T) {
	repo := NewTierRepository(brokenStore{}, logger.Discard())

	tier := testutil.TestTier("gold", model.AccessAll)
	err := repo.Create(context.Background(), &tier)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errBroken)

	found, err := repo.GetByID("gold")
	require.NoError(t, err)
	assert.Equal(t, model.AccessAll, found.AccessMode)
}

func TestCollection_QuotaExceeded(t *testing.T) {
	repo := NewCouponRepository(kvstore.NewMemoryStore(16), logger.Discard())

	c := testutil.TestCoupon("SAVE10")
	err := repo.Create(context.Background(), &c)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, kvstore.ErrQuotaExceeded)
	assert.Len(t, repo.List(), 1)
}

func TestCollection_DomainErrorLeavesStateUntouched(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	repo := NewTierRepository(store, logger.Discard())

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), KeyTiers)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestCollection_ListReturnsCopy(t *testing.T) {
	repo := NewTierRepository(kvstore.NewMemoryStore(0), logger.Discard())
	tier := testutil.TestTier("gold", model.AccessAll)
	require.NoError(t, repo.Create(context.Background(), &tier))

	list := repo.List()
	list[0].Name = "changed"

	found, err := repo.GetByID("gold")
	require.NoError(t, err)
	assert.Equal(t, "Tier gold", found.Name)
}
