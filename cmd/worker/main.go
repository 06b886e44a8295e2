package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/database"
	"github.com/qs3c/course_store_server/internal/pkg/email"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/pkg/queue"
	"github.com/qs3c/course_store_server/internal/worker"
)

func main() {
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Info("Redis connected")

	receipts := queue.NewQueue(rdb, cfg.Queue.ReceiptQueue)
	mailer := email.NewService(&cfg.Email, cfg.Store)
	processor := worker.NewProcessor(receipts, mailer, log)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	log.WithFields(logrus.Fields{
		"queue":       cfg.Queue.ReceiptQueue,
		"max_workers": cfg.Queue.MaxWorkers,
	}).Info("Receipt worker started")

	processor.Run(ctx, cfg.Queue.MaxWorkers)
	log.Info("Worker shutdown complete")
}
