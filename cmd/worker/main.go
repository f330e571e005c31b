// Package main runs the background report export worker.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/insights/config"
	"github.com/aura-webinar/insights/internal/analytics"
	"github.com/aura-webinar/insights/internal/attendance"
	"github.com/aura-webinar/insights/internal/auth"
	"github.com/aura-webinar/insights/internal/exports"
	"github.com/aura-webinar/insights/internal/ledger"
	"github.com/aura-webinar/insights/internal/webinars"
	"github.com/aura-webinar/insights/pkg/database"
	"github.com/aura-webinar/insights/pkg/queue"
	"github.com/aura-webinar/insights/pkg/redis"
	"github.com/aura-webinar/insights/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ExportsBucket:        cfg.AWS.ExportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	var paymentLedger analytics.Ledger
	stripeSource, err := ledger.NewStripe(cfg.Stripe.SecretKey, logger)
	switch {
	case err == nil:
		paymentLedger = ledger.NewBreaker(stripeSource, ledger.BreakerConfig{
			Name:             "stripe",
			FailureThreshold: cfg.Stripe.BreakerFailures,
			OpenTimeout:      cfg.Stripe.BreakerOpenTimeout,
		}, logger)
	case errors.Is(err, ledger.ErrNotConfigured):
		logger.Warn("stripe not configured, exports will omit revenue")
	default:
		logger.Fatal("stripe", zap.Error(err))
	}

	creatorRepo := auth.NewRepository(pool)
	engine := analytics.NewEngine(webinars.NewRepository(pool), attendance.NewRepository(pool, logger), paymentLedger, analytics.Config{
		DefaultDays:    cfg.Analytics.DefaultDays,
		FetchCap:       cfg.Analytics.FetchCap,
		LedgerPageSize: cfg.Analytics.LedgerPageSize,
		LedgerTimeout:  cfg.Stripe.Timeout,
	}, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := exports.NewProcessor(jobQueue, engine, creatorRepo, s3Client, cfg.Export.RetryBackoff, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
