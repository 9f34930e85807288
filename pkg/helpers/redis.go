package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client and checks it answers PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisGetJSON decodes the value at key into dest. The bool is false when the
// key does not exist.
func RedisGetJSON[T any](ctx context.Context, rdb *redis.Client, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

// RedisGeneration returns the counter stored at genKey, or "" when unset.
func RedisGeneration(ctx context.Context, rdb *redis.Client, genKey string) (string, error) {
	gen, err := rdb.Get(ctx, genKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// RedisSetJSONIfGeneration writes value at key only while genKey still holds
// gen, as read before the value was loaded. It reports whether the value was
// written; a concurrent RedisInvalidate makes it skip the write.
func RedisSetJSONIfGeneration(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration, genKey, gen string) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	written := false
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, ttl)
			return nil
		})
		written = err == nil
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return written, err
}

// RedisInvalidate bumps genKey and deletes key in one transaction.
func RedisInvalidate(ctx context.Context, rdb *redis.Client, key, genKey string, genTTL time.Duration) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, genTTL)
		p.Del(ctx, key)
		return nil
	})
	return err
}
