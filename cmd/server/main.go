// Package main runs the creator analytics HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/insights/config"
	"github.com/aura-webinar/insights/internal/analytics"
	"github.com/aura-webinar/insights/internal/attendance"
	"github.com/aura-webinar/insights/internal/auth"
	"github.com/aura-webinar/insights/internal/exports"
	"github.com/aura-webinar/insights/internal/ledger"
	"github.com/aura-webinar/insights/internal/middleware"
	"github.com/aura-webinar/insights/internal/webinars"
	"github.com/aura-webinar/insights/pkg/database"
	"github.com/aura-webinar/insights/pkg/queue"
	"github.com/aura-webinar/insights/pkg/redis"
	"github.com/aura-webinar/insights/pkg/response"
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

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	creatorRepo := auth.NewRepository(pool)
	webinarRepo := webinars.NewRepository(pool)
	attendanceRepo := attendance.NewRepository(pool, logger)

	// Payment ledger (optional; revenue is omitted without it)
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
		logger.Warn("stripe not configured, revenue disabled")
	default:
		logger.Fatal("stripe", zap.Error(err))
	}

	engine := analytics.NewEngine(webinarRepo, attendanceRepo, paymentLedger, analytics.Config{
		DefaultDays:    cfg.Analytics.DefaultDays,
		FetchCap:       cfg.Analytics.FetchCap,
		LedgerPageSize: cfg.Analytics.LedgerPageSize,
		LedgerTimeout:  cfg.Stripe.Timeout,
	}, logger)
	analyticsHandler := analytics.NewHandler(engine, creatorRepo, logger)
	webinarHandler := webinars.NewHandler(webinarRepo, logger)

	// Exports (Redis queue + S3)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	var exportStore exports.ObjectStore
	if s3Client != nil {
		exportStore = s3Client
	}
	exportHandler := exports.NewHandler(jobQueue, exportStore, creatorRepo, logger)
	exportProcessor := exports.NewProcessor(jobQueue, engine, creatorRepo, exportStore, cfg.Export.RetryBackoff, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
		if err := rdb.Healthy(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "redis unavailable")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/webinars", webinarHandler.List)
		api.GET("/analytics", analyticsHandler.GetCreatorAnalytics)
		api.GET("/webinars/:id/analytics", analyticsHandler.GetByWebinar)
		api.POST("/analytics/exports", exportHandler.Create)
		api.GET("/analytics/exports/:id", exportHandler.Get)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process export worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if exportStore != nil && cfg.Export.Enabled {
		go exportProcessor.Run(workerCtx)
		logger.Info("export worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
