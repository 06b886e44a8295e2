package repository

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

type TierRepository struct {
	tiers *collection[model.SubscriptionTier]
}

func NewTierRepository(store kvstore.Store, log *logrus.Logger) *TierRepository {
	return &TierRepository{tiers: newCollection[model.SubscriptionTier](store, KeyTiers, log)}
}

func (r *TierRepository) Load(ctx context.Context) error {
	return r.tiers.load(ctx, nil)
}

func (r *TierRepository) List() []model.SubscriptionTier {
	return r.tiers.all()
}

func (r *TierRepository) GetByID(id string) (*model.SubscriptionTier, error) {
	t, ok := r.tiers.find(func(t *model.SubscriptionTier) bool { return t.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *TierRepository) Create(ctx context.Context, tier *model.SubscriptionTier) error {
	return r.tiers.mutate(ctx, func(items []model.SubscriptionTier) ([]model.SubscriptionTier, error) {
		tier.CreatedAt = time.Now()
		return append(items, *tier), nil
	})
}

func (r *TierRepository) Update(ctx context.Context, tier *model.SubscriptionTier) error {
	return r.tiers.mutate(ctx, func(items []model.SubscriptionTier) ([]model.SubscriptionTier, error) {
		i := indexOf(items, func(t *model.SubscriptionTier) bool { return t.ID == tier.ID })
		if i < 0 {
			return nil, ErrNotFound
		}
		tier.CreatedAt = items[i].CreatedAt
		items[i] = *tier
		return items, nil
	})
}

func (r *TierRepository) Delete(ctx context.Context, id string) error {
	return r.tiers.mutate(ctx, func(items []model.SubscriptionTier) ([]model.SubscriptionTier, error) {
		i := indexOf(items, func(t *model.SubscriptionTier) bool { return t.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}
