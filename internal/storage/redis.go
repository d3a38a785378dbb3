package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
)

const defaultRedisPingTimeout = 5 * time.Second

// RedisOptions configures the redis backend.
type RedisOptions struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	KeyPrefix   string        // ex: "bmp:"
	PingTimeout time.Duration // defaults to 5s
}

// RedisStorage implements Store with one redis string per key.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to redis and verifies the connection with a ping.
func NewRedisStorage(ctx context.Context, opts RedisOptions, log logger.Logger) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultRedisPingTimeout
	}

	log.Info("connecting to redis", logger.String("addr", opts.Addr))
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable at %s: %w", opts.Addr, err)
	}
	log.Info("connected to redis", logger.String("addr", opts.Addr))

	return NewRedisStorageFromClient(client, opts.KeyPrefix), nil
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(name string) string {
	return s.prefix + name
}

func (s *RedisStorage) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}

	values, err := s.client.MGet(ctx, prefixed...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read keys: %w", err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // missing key
		}
		result[keys[i]] = []byte(str)
	}
	return result, nil
}

// Set writes every key through a non-transactional pipeline.
func (s *RedisStorage) Set(ctx context.Context, values map[string][]byte) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write keys: %w", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
