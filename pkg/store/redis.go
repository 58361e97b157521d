package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/wayfinder/pkg/cache"
)

const redisPrefix = "wayfinder:route:"

// Redis stores routes as plain keys and lets Redis expire them.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server named by a redis:// URL.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Save(ctx context.Context, data []byte, ttl time.Duration) (string, error) {
	id := NewID()
	if err := s.client.Set(ctx, redisPrefix+id, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("save route: %w", err)
	}
	return id, nil
}

func (s *Redis) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return data, nil
}

func (s *Redis) Close() error { return s.client.Close() }

var _ Store = (*Redis)(nil)
