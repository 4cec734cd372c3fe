package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/cache"
	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/db"
	"github.com/hrimajin/internal/handler"
	"github.com/hrimajin/internal/logging"
	"github.com/hrimajin/internal/router"
	"github.com/hrimajin/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.IsDebug())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseURL, logging.NewGormLogger(logger)); err != nil {
		logger.Fatal("failed to initialize database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}

	bucket, err := storage.NewLocalBucket(cfg.UploadDir, cfg.UploadURLPath, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	linkCache, err := cache.New(cfg.RedisAddr, cfg.EnableRedis)
	if err != nil {
		logger.Warn("redis unavailable, direct link cache disabled", zap.Error(err))
		linkCache = cache.Disabled()
	}
	defer linkCache.Close()

	api := handler.NewAPI(cfg, db.DB, bucket, linkCache, logger)
	r := router.SetupRouter(cfg, api, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.Bool("redis", linkCache.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
