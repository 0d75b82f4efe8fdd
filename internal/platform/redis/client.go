package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/config"
)

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New creates a Redis client from configuration. Returns nil if no URL is
// configured (cache disabled).
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health checks connection liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
