package container

import (
	"context"

	"github.com/oksasatya/users-api/pkg/helpers"
)

// ConnectOptional attaches Redis, RabbitMQ and Elasticsearch when they are
// configured. A service that cannot be reached is skipped with a warning.
// The returned func closes whatever was opened.
func (c *Container) ConnectOptional(ctx context.Context) func() {
	cfg := c.Config
	var closers []func()

	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable; cache and shared rate limits disabled")
		} else {
			c.Redis = rdb
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			c.Logger.WithError(err).Warn("rabbitmq unavailable; events disabled")
		} else {
			c.RabbitPub = pub
			closers = append(closers, pub.Close)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			c.ES = es
		}
	}

	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
