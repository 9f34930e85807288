// Package container holds the components constructed at startup so that
// the router can wire modules from them. It is built once in main and
// passed explicitly; nothing here is global.
package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/config"
	"github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/pkg/helpers"
)

// Container carries shared infrastructure. Redis, RabbitPub and ES may be
// nil when the corresponding service is not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager

	Users     repository.UserRepository
	AuthUsers repository.AuthUserRepository
	Store     repository.Pinger

	Redis     *redis.Client
	RabbitPub *helpers.RabbitPublisher
	ES        *elasticsearch.Client

	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// New builds a container around the mandatory pieces. Optional clients are
// attached by the caller.
func New(cfg *config.Config, logger *logrus.Logger, users repository.UserRepository, authUsers repository.AuthUserRepository, store repository.Pinger) *Container {
	reg := prometheus.NewRegistry()
	return &Container{
		Config:    cfg,
		Logger:    logger,
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL),
		Users:     users,
		AuthUsers: authUsers,
		Store:     store,
		Registry:  reg,
		Gatherer:  reg,
	}
}
