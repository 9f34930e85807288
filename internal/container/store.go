package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/config"
	"github.com/oksasatya/users-api/internal/domain/repository"
	pginfra "github.com/oksasatya/users-api/internal/infrastructure/postgres"
	"github.com/oksasatya/users-api/internal/infrastructure/sqlite"
)

// Stores bundles the repositories of one storage driver.
type Stores struct {
	Users     repository.UserRepository
	AuthUsers repository.AuthUserRepository
	Pinger    repository.Pinger
	Close     func()
}

// OpenStores connects to the driver selected by DB_DRIVER and brings the
// schema up to date.
func OpenStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		users := pginfra.NewUserRepository(pool)
		return &Stores{
			Users:     users,
			AuthUsers: pginfra.NewAuthUserRepository(pool),
			Pinger:    users,
			Close:     pool.Close,
		}, nil
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:     store.Users(),
			AuthUsers: store.AuthUsers(),
			Pinger:    store,
			Close:     func() { _ = store.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
