package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/visitrack/backend/config"
	"github.com/visitrack/backend/internal/messages"
	"github.com/visitrack/backend/internal/worker"
	"github.com/visitrack/backend/pkg/database"
	"github.com/visitrack/backend/pkg/queue"
	redisclient "github.com/visitrack/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if cfg.SMTP.Host == "" {
		logger.Fatal("SMTP_HOST is required for the email worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	jobs := queue.NewQueue(rdb.Client, logger)
	messageRepo := messages.NewRepository(pool)

	processor := worker.NewEmailProcessor(jobs, messageRepo, cfg.SMTP, logger)
	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker failed", zap.Error(err))
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	return logger
}
