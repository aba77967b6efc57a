package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/cache"
	"rewind-bknd/internal/config"
	"rewind-bknd/internal/database"
	"rewind-bknd/internal/logger"
	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/routes"
	"rewind-bknd/internal/seed"
	"rewind-bknd/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}
	if err := seed.ApplyIfEmpty(ctx, db); err != nil {
		logr.Fatal("failed to load reference tables", zap.Error(err))
	}

	metrics.Init()
	if err := metrics.RegisterDBMetrics(prometheus.DefaultRegisterer, db.DB, logr.Logger); err != nil {
		logr.Warn("database metrics disabled", zap.Error(err))
	}

	var ref services.ReferenceStore = services.NewReferenceService(db)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logr.Warn("reference cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			ref = cache.NewReferenceCache(ref, client, cfg.ReferenceCacheTTL, logr.Logger)
			logr.Info("reference cache enabled", zap.Duration("ttl", cfg.ReferenceCacheTTL))
		}
	}

	var tokens *auth.TokenManager
	if cfg.AuthEnabled {
		tokens, err = auth.LoadTokenManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, "rewind-bknd")
		if err != nil {
			logr.Fatal("failed to init jwt manager", zap.Error(err))
		}
	}

	r := routes.NewRouter(db, ref, tokens, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("auth", cfg.AuthEnabled))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	logr.Info("server exited gracefully")
}
