package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/metrics"
)

var (
	// ErrNotFound 集合中没有对应 id 的记录
	ErrNotFound = errors.New("record not found")
	// ErrPersist 内存状态已更新但写入存储失败，调用方可以提示后继续
	ErrPersist = errors.New("persist failed")
)

// Collection keys in the key-value store.
const (
	KeyProducts = "products"
	KeyCoupons  = "coupons"
	KeyTiers    = "subscription_tiers"
	KeyOrders   = "orders"
	KeySettings = "store_settings"
)

// collection 以单个 JSON 文档保存整个集合，启动时加载，每次修改后整体写回
type collection[T any] struct {
	mu    sync.RWMutex
	store kvstore.Store
	key   string
	items []T
	log   *logrus.Entry
}

func newCollection[T any](store kvstore.Store, key string, log *logrus.Logger) *collection[T] {
	return &collection[T]{
		store: store,
		key:   key,
		items: []T{},
		log:   log.WithField("collection", key),
	}
}

// load 读取集合；不存在时使用 defaults，内容损坏时记录警告后同样回退
func (c *collection[T]) load(ctx context.Context, defaults []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if defaults == nil {
		defaults = []T{}
	}
	items, err := loadDocument(ctx, c.store, c.key, c.log, defaults)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	return nil
}

func (c *collection[T]) all() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) find(match func(*T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if match(&c.items[i]) {
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

// mutate 在锁内修改集合。fn 返回错误时不做任何改动；
// 否则更新内存并写回存储，写回失败返回 ErrPersist，内存状态保留
func (c *collection[T]) mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := make([]T, len(c.items))
	copy(work, c.items)
	next, err := fn(work)
	if err != nil {
		return err
	}
	c.items = next
	return saveDocument(ctx, c.store, c.key, c.log, next)
}

func loadDocument[V any](ctx context.Context, store kvstore.Store, key string, log *logrus.Entry, fallback V) (V, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w", key, err)
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		log.WithError(err).Warn("stored document is malformed, using defaults")
		return fallback, nil
	}
	return v, nil
}

func saveDocument[V any](ctx context.Context, store kvstore.Store, key string, log *logrus.Entry, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		metrics.PersistFailures.WithLabelValues(key).Inc()
		log.WithError(err).Warn("failed to persist document")
		return fmt.Errorf("%w: %s: %w", ErrPersist, key, err)
	}
	return nil
}

func indexOf[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}
