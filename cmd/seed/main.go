package main

import (
	"context"
	"flag"
	"time"

	"rewind-bknd/internal/cache"
	"rewind-bknd/internal/config"
	"rewind-bknd/internal/database"
	"rewind-bknd/internal/logger"
	"rewind-bknd/internal/seed"
	"rewind-bknd/internal/services"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "YAML file with wires and winding_factors (defaults to the embedded tables)")
	userEmail := flag.String("user", "", "create or reset a local workshop account with this email")
	userName := flag.String("name", "", "display name of the account created with -user")
	password := flag.String("password", "", "password of the account created with -user")
	role := flag.String("role", "", "role of the account created with -user (default technician)")
	flag.Parse()

	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	var data *seed.Data
	if *file != "" {
		data, err = seed.Load(*file)
	} else {
		data, err = seed.Default()
	}
	if err != nil {
		logr.Fatal("failed to read reference data", zap.Error(err), zap.String("file", *file))
	}
	if err := seed.Apply(ctx, db, data); err != nil {
		logr.Fatal("failed to load reference tables", zap.Error(err))
	}
	logr.Info("reference tables loaded",
		zap.Int("wires", len(data.Wires)),
		zap.Int("winding_factors", len(data.WindingFactors)))

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logr.Warn("could not reach reference cache; entries expire on their own", zap.Error(err))
		} else {
			defer client.Close()
			c := cache.NewReferenceCache(services.NewReferenceService(db), client, cfg.ReferenceCacheTTL, logr.Logger)
			if err := c.Invalidate(ctx); err != nil {
				logr.Warn("failed to invalidate reference cache", zap.Error(err))
			}
		}
	}

	if *userEmail != "" {
		// no tokens are issued here
		authSvc := services.NewAuthService(db, nil, nil, cfg, logr)
		user, err := authSvc.CreateLocalUser(ctx, *userEmail, *userName, *password, *role)
		if err != nil {
			logr.Fatal("failed to create user", zap.Error(err))
		}
		logr.Info("workshop account ready", zap.String("email", user.Email), zap.String("role", user.Role))
	}
}
