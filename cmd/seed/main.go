package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/config"
	"github.com/oksasatya/users-api/internal/container"
	"github.com/oksasatya/users-api/internal/router"
	"github.com/oksasatya/users-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stores, err := container.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer stores.Close()

	c := container.New(cfg, logger, stores.Users, stores.AuthUsers, stores.Pinger)
	closeOptional := c.ConnectOptional(ctx)
	defer closeOptional()
	svcs := router.BuildServices(c)

	data, err := loadSeed(ctx, cfg.SeedSource, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).WithField("source", cfg.SeedSource).Fatal("failed to load seed data")
	}

	res, err := seed(ctx, svcs.Users, svcs.Auth, data, admin{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		logger.WithError(err).Fatal("seed failed")
	}
	if res.Skipped {
		logger.Info("database already has users, skipping user seed")
	}
	logger.WithFields(logrus.Fields{
		"users_created": res.Created,
		"admin_created": res.AdminCreated,
		"admin_email":   cfg.SeedAdminEmail,
	}).Info("seed complete")
}
