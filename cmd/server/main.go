package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement-backend/internal/config"
	"procurement-backend/internal/dashboard"
	"procurement-backend/internal/database"
	"procurement-backend/internal/erp"
	"procurement-backend/internal/logging"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/server"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg, logger)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	store := repository.NewGormStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{
		Config:    cfg,
		Store:     store,
		Logger:    logger,
		AccessLog: true,
	}

	if rdb := connectRedis(ctx, cfg, logger); rdb != nil {
		defer rdb.Close()
		deps.Locker = redislock.New(rdb)
		deps.Cache = dashboard.NewReportCache(rdb, cfg.ReportCacheTTL)
	}

	deps.Publisher = newPublisher(ctx, cfg, logger)
	defer deps.Publisher.Close()

	if cfg.ReportArchiveBucket != "" {
		archive, err := dashboard.NewGCSArchiver(ctx, cfg.ReportArchiveBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			logger.WithError(err).Warn("report archive disabled")
		} else {
			defer archive.Close()
			deps.Archive = archive
		}
	}

	app := server.New(deps)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	logger.WithField("port", cfg.HTTPPort).Info("listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// connectRedis returns nil when Redis is not configured or unreachable.
func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable; cache and sync lock disabled")
		rdb.Close()
		return nil
	}
	return rdb
}

// newPublisher falls back to the simulated publisher when Pub/Sub is not configured.
func newPublisher(ctx context.Context, cfg *config.Config, logger *logrus.Logger) erp.Publisher {
	if cfg.ErpProjectID == "" {
		logger.Info("ERP publisher: simulated")
		return &erp.SimulatedPublisher{}
	}
	pub, err := erp.NewPubSubPublisher(ctx, cfg.ErpProjectID, cfg.ErpTopic, cfg.ErpCredentialsJSON)
	if err != nil {
		log.Fatalf("erp publisher: %v", err)
	}
	return pub
}
