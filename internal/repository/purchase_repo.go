package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/pkg/access"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

// PurchaseRepository 按用户保存已购买的商品、订阅档位和模块 id，
// 首次读取后缓存在内存中
type PurchaseRepository struct {
	mu    sync.Mutex
	store kvstore.Store
	log   *logrus.Entry
	cache map[int64]*access.Purchased
}

func NewPurchaseRepository(store kvstore.Store, log *logrus.Logger) *PurchaseRepository {
	return &PurchaseRepository{
		store: store,
		log:   log.WithField("collection", "purchased_ids"),
		cache: make(map[int64]*access.Purchased),
	}
}

func purchaseKey(userID int64) string {
	return fmt.Sprintf("purchased_ids:%d", userID)
}

// Get 返回副本，调用方修改不影响缓存
func (r *PurchaseRepository) Get(ctx context.Context, userID int64) (*access.Purchased, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return access.NewPurchased(p.IDs()...), nil
}

// Add 记录一次购买，重复 id 不会再次写入。写入失败时内存中仍保留
func (r *PurchaseRepository) Add(ctx context.Context, userID int64, id string) (*access.Purchased, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.Add(id) {
		return access.NewPurchased(p.IDs()...), nil
	}
	err = saveDocument(ctx, r.store, purchaseKey(userID), r.log.WithField("user_id", userID), p.IDs())
	return access.NewPurchased(p.IDs()...), err
}

func (r *PurchaseRepository) get(ctx context.Context, userID int64) (*access.Purchased, error) {
	if p, ok := r.cache[userID]; ok {
		return p, nil
	}
	ids, err := loadDocument(ctx, r.store, purchaseKey(userID), r.log.WithField("user_id", userID), []string{})
	if err != nil {
		return nil, err
	}
	p := access.NewPurchased(ids...)
	r.cache[userID] = p
	return p, nil
}
