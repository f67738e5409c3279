package contextstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "context:"
	maxUpdateRetries = 10
)

// RedisBackend stores transcripts as plain string keys so that several
// instances share conversation memory.
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Load(ctx context.Context, key string) (string, error) {
	v, err := b.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Update is an optimistic WATCH/MULTI transaction, retried when another
// writer touched the key in between.
func (b *RedisBackend) Update(ctx context.Context, key string, fn func(string) string) error {
	fullKey := redisKeyPrefix + key
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next := fn(current)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := b.rdb.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too much contention", fullKey)
}
