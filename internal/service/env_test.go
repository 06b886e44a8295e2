package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/pkg/queue"
	"github.com/qs3c/course_store_server/internal/repository"
)

var errStoreDown = errors.New("store down")

// flakyStore 可切换为写入失败或写入变慢的存储
type flakyStore struct {
	kvstore.Store
	mu    sync.Mutex
	down  bool
	delay time.Duration
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	down, delay := s.down, s.delay
	s.mu.Unlock()
	if down {
		return errStoreDown
	}
	time.Sleep(delay)
	return s.Store.Set(ctx, key, value)
}

func (s *flakyStore) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

type storeEnv struct {
	store     *flakyStore
	products  *repository.ProductRepository
	coupons   *repository.CouponRepository
	tiers     *repository.TierRepository
	orders    *repository.OrderRepository
	purchases *repository.PurchaseRepository
	settings  *repository.SettingsRepository
}

// fixedNow 2024-06-15 12:00 Asia/Kolkata
var fixedNow = time.Date(2024, 6, 15, 6, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func testLogger() *logrus.Logger { return logger.Discard() }

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()

	log := testLogger()
	store := &flakyStore{Store: kvstore.NewMemoryStore(0)}
	return &storeEnv{
		store:     store,
		products:  repository.NewProductRepository(store, log),
		coupons:   repository.NewCouponRepository(store, log),
		tiers:     repository.NewTierRepository(store, log),
		orders:    repository.NewOrderRepository(store, log),
		purchases: repository.NewPurchaseRepository(store, log),
		settings:  repository.NewSettingsRepository(store, config.StoreSettings{}, log),
	}
}

func (e *storeEnv) addProduct(t *testing.T, p model.Product) {
	t.Helper()
	require.NoError(t, e.products.Create(context.Background(), &p))
}

func (e *storeEnv) addCoupon(t *testing.T, c model.Coupon) {
	t.Helper()
	require.NoError(t, e.coupons.Create(context.Background(), &c))
}

func (e *storeEnv) addTier(t *testing.T, tier model.SubscriptionTier) {
	t.Helper()
	require.NoError(t, e.tiers.Create(context.Background(), &tier))
}

func (e *storeEnv) grant(t *testing.T, userID int64, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := e.purchases.Add(context.Background(), userID, id)
		require.NoError(t, err)
	}
}

// recordingPublisher 记录发布的订单事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrder(_ context.Context, ev *pubsub.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// recordingQueue 记录投递的收据任务
type recordingQueue struct {
	jobs []*queue.ReceiptJob
	err  error
}

func (q *recordingQueue) Push(_ context.Context, job *queue.ReceiptJob) error {
	q.jobs = append(q.jobs, job)
	return q.err
}
