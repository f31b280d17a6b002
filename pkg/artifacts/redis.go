package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisConfig configures the Redis claim store
type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long a claim outlives its run
	TTL time.Duration
}

// RedisClaims shares claims between processes through Redis
type RedisClaims struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	owner  string
}

// NewRedisClaims connects to Redis and verifies the connection
func NewRedisClaims(cfg RedisConfig) (*RedisClaims, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisClaimsFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisClaimsFromClient creates a claim store on an existing client
func NewRedisClaimsFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisClaims {
	if prefix == "" {
		prefix = "langreg:claim:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisClaims{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		owner:  uuid.New().String(),
	}
}

// Claim sets the claim key if it does not exist yet
func (c *RedisClaims) Claim(ctx context.Context, runID, path string) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.key(runID, path), c.owner, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim failed: %w", err)
	}
	return ok, nil
}

// Release deletes the claim if this store owns it
func (c *RedisClaims) Release(ctx context.Context, runID, path string) error {
	key := c.key(runID, path)
	owner, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis release failed: %w", err)
	}
	if owner != c.owner {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// Ping checks the connection
func (c *RedisClaims) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying client
func (c *RedisClaims) Client() *redis.Client {
	return c.client
}

// Close closes the connection
func (c *RedisClaims) Close() error {
	return c.client.Close()
}

func (c *RedisClaims) key(runID, path string) string {
	return c.prefix + claimKey(runID, path)
}
