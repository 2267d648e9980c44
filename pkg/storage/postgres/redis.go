package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/tally/pkg/storage"
)

const redisKeyPrefix = "tally:"

// RedisClient is the shared lookup cache. It implements storage.LookupCache.
type RedisClient struct {
	client *redis.Client
	config storage.Config
}

// NewRedisClient creates a new Redis client
func NewRedisClient(config storage.Config) (*RedisClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Override with config values if provided
	if config.RedisPassword != "" {
		opts.Password = config.RedisPassword
	}
	if config.RedisDB > 0 {
		opts.DB = config.RedisDB
	}
	if config.RedisMaxRetries > 0 {
		opts.MaxRetries = config.RedisMaxRetries
	}
	if config.RedisPoolSize > 0 {
		opts.PoolSize = config.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{
		client: client,
		config: config,
	}, nil
}

// GetInt64 reads an integer value. A missing key is a miss, not an error.
func (c *RedisClient) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("redis get failed: %w", err)
	}

	value, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		// Corrupt entry, drop it
		c.client.Del(ctx, redisKeyPrefix+key)
		return 0, false, fmt.Errorf("invalid cached value for %s: %w", key, err)
	}
	return value, true, nil
}

// SetInt64 stores an integer value with a TTL. A zero TTL never expires.
func (c *RedisClient) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, strconv.FormatInt(value, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// HealthCheck implements storage.HealthChecker
func (c *RedisClient) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}
	return nil
}

// GetClient returns the underlying Redis client
func (c *RedisClient) GetClient() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	return c.client.Close()
}
