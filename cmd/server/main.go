package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/api"
	"github.com/qs3c/course_store_server/internal/api/handler"
	"github.com/qs3c/course_store_server/internal/database"
	"github.com/qs3c/course_store_server/internal/pkg/cron"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/pkg/oauth"
	"github.com/qs3c/course_store_server/internal/pkg/oss"
	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/pkg/queue"
	"github.com/qs3c/course_store_server/internal/pkg/ws"
	"github.com/qs3c/course_store_server/internal/repository"
	"github.com/qs3c/course_store_server/internal/service"
)

func main() {
	// .env 可选
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.Log)

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("Database connected")

	// Redis 可选：不可用时关闭订单推送、收据队列和 GitHub 登录
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, realtime feed and receipts disabled")
		rdb = nil
	} else {
		log.Info("Redis connected")
	}

	store, err := newStore(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(store, log)
	tierRepo := repository.NewTierRepository(store, log)
	couponRepo := repository.NewCouponRepository(store, log)
	orderRepo := repository.NewOrderRepository(store, log)
	purchaseRepo := repository.NewPurchaseRepository(store, log)
	settingsRepo := repository.NewSettingsRepository(store, cfg.Store, log)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	for name, r := range map[string]interface{ Load(context.Context) error }{
		"settings": settingsRepo,
		"products": productRepo,
		"tiers":    tierRepo,
		"coupons":  couponRepo,
		"orders":   orderRepo,
	} {
		if err := r.Load(loadCtx); err != nil {
			log.WithError(err).WithField("collection", name).Warn("Failed to load collection, starting empty")
		}
	}
	cancelLoad()

	// 对象存储可选，未配置时上传内容内嵌返回
	var storage service.ObjectStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.WithError(err).Warn("Failed to init OSS client")
		} else {
			storage = ossClient
			log.Info("OSS client initialized")
		}
	}

	var states *oauth.StateStore
	if rdb != nil {
		states = oauth.NewStateStore(rdb)
	}

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg, states, log)
	if err := authService.EnsureAdmin(); err != nil {
		log.WithError(err).Warn("Failed to ensure admin account")
	}
	userService := service.NewUserService(userRepo, storage)
	uploadService := service.NewUploadService(storage, &cfg.Upload, log)
	productService := service.NewProductService(productRepo, settingsRepo, log)
	tierService := service.NewTierService(tierRepo, productRepo, log)
	couponService := service.NewCouponService(couponRepo, settingsRepo, log)
	settingsService := service.NewSettingsService(settingsRepo)
	libraryService := service.NewLibraryService(productRepo, tierRepo, purchaseRepo, settingsRepo, log)
	orderService := service.NewOrderService(orderRepo, settingsRepo, log)
	checkoutService := service.NewCheckoutService(productRepo, tierRepo, couponRepo, orderRepo, purchaseRepo, settingsRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsHub := ws.NewHub(log)
	if rdb != nil {
		publisher := pubsub.NewPublisher(rdb)
		checkoutService.WithPublisher(publisher).WithReceiptQueue(queue.NewQueue(rdb, cfg.Queue.ReceiptQueue))
		orderService.WithPublisher(publisher)

		feed := service.NewOrderFeed(pubsub.NewSubscriber(rdb), wsHub, log)
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.WithError(err).Error("Order feed stopped")
			}
		}()
	}

	// 定时停用过期优惠券
	cronService := cron.NewService(couponService, cfg.Cron.CouponSweep, cfg.Store.Location(), log)
	if err := cronService.Start(); err != nil {
		log.WithError(err).Warn("Coupon sweep not scheduled")
	}
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(api.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Product:   handler.NewProductHandler(productService),
		Store:     handler.NewStoreHandler(checkoutService, couponService, authService),
		Library:   handler.NewLibraryHandler(libraryService),
		Order:     handler.NewOrderHandler(orderService),
		Coupon:    handler.NewCouponHandler(couponService),
		Tier:      handler.NewTierHandler(tierService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Upload:    handler.NewUploadHandler(uploadService),
		WebSocket: handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, log),
	}, cfg, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Received shutdown signal")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}

// newStore 按 storage.driver 选择集合文档的存储后端
func newStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (kvstore.Store, error) {
	switch cfg.Storage.Driver {
	case "database", "":
		return kvstore.NewGormStore(db, cfg.Storage.MaxValueBytes), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("storage driver redis requires a reachable redis")
		}
		return kvstore.NewRedisStore(rdb), nil
	case "memory":
		return kvstore.NewMemoryStore(0), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
