package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/api/middleware"
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/repository"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// switchStore 可切换为写入失败的存储
type switchStore struct {
	kvstore.Store
	mu   sync.Mutex
	down bool
}

func (s *switchStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errors.New("store down")
	}
	return s.Store.Set(ctx, key, value)
}

func (s *switchStore) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

type testContext struct {
	DB        *gorm.DB
	Store     *switchStore
	Products  *repository.ProductRepository
	Coupons   *repository.CouponRepository
	Tiers     *repository.TierRepository
	Orders    *repository.OrderRepository
	Purchases *repository.PurchaseRepository
	Settings  *repository.SettingsRepository
	Users     *repository.UserRepository
}

func setupTestContext(t *testing.T) (*testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := logger.Discard()
	store := &switchStore{Store: kvstore.NewMemoryStore(0)}

	ctx := &testContext{
		DB:        db,
		Store:     store,
		Products:  repository.NewProductRepository(store, log),
		Coupons:   repository.NewCouponRepository(store, log),
		Tiers:     repository.NewTierRepository(store, log),
		Orders:    repository.NewOrderRepository(store, log),
		Purchases: repository.NewPurchaseRepository(store, log),
		Settings:  repository.NewSettingsRepository(store, config.StoreSettings{}, log),
		Users:     repository.NewUserRepository(db),
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return ctx, cleanup
}

func (tc *testContext) addProduct(t *testing.T, p model.Product) {
	t.Helper()
	require.NoError(t, tc.Products.Create(context.Background(), &p))
}

func (tc *testContext) addCoupon(t *testing.T, c model.Coupon) {
	t.Helper()
	require.NoError(t, tc.Coupons.Create(context.Background(), &c))
}

func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, model.RoleCustomer)
		c.Next()
	}
}

func mockAdmin(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, model.RoleAdmin)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 将响应中的 data 解析为 map
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}
