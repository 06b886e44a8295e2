package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/database"
	"github.com/qs3c/course_store_server/internal/pkg/cron"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/repository"
	"github.com/qs3c/course_store_server/internal/service"
)

var dryRun = flag.Bool("dry-run", true, "Only report coupons that would be deactivated")

// 手动执行一次优惠券清理，停用已过期或次数用尽的优惠券
func main() {
	flag.Parse()
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

	var store kvstore.Store
	switch cfg.Storage.Driver {
	case "redis":
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
		store = kvstore.NewRedisStore(rdb)
	case "memory":
		log.Fatal("memory storage has nothing to clean")
	default:
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect database: %v", err)
		}
		store = kvstore.NewGormStore(db, cfg.Storage.MaxValueBytes)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	couponRepo := repository.NewCouponRepository(store, log)
	settingsRepo := repository.NewSettingsRepository(store, cfg.Store, log)
	if err := settingsRepo.Load(ctx); err != nil {
		log.WithError(err).Warn("Failed to load settings, using defaults")
	}
	if err := couponRepo.Load(ctx); err != nil {
		log.Fatalf("Failed to load coupons: %v", err)
	}

	couponService := service.NewCouponService(couponRepo, settingsRepo, log)
	if *dryRun {
		due := couponService.DueForSweep()
		log.WithField("coupons", due).Infof("DRY RUN: %d coupons would be deactivated", len(due))
		log.Info("Run with -dry-run=false to apply")
		return
	}

	n, err := cron.NewService(couponService, cfg.Cron.CouponSweep, cfg.Store.Location(), log).RunNow(ctx)
	if err != nil {
		log.Fatalf("Coupon sweep failed: %v", err)
	}
	log.WithField("deactivated", n).Info("Cleanup completed")
}
