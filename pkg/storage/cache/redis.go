package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/storage"
)

const userKeyPrefix = "authgate:user:"

// NewRedisClient creates a Redis client from the storage config and pings it
func NewRedisClient(ctx context.Context, config storage.Config) (*redis.Client, error) {
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

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// cachedUser is the Redis wire form. auth.User hides its hash from JSON,
// so the cache entry carries it explicitly.
type cachedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RedisUserCache stores users by id in Redis
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUserCache creates a Redis-backed user cache
func NewRedisUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(id string) string {
	return userKeyPrefix + id
}

// Get returns the cached user, or nil on a miss
func (c *RedisUserCache) Get(ctx context.Context, id string) (*auth.User, error) {
	key := userKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		// corrupt entry, drop it so the next read repopulates
		c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &auth.User{
		ID:           entry.ID,
		Name:         entry.Name,
		Email:        entry.Email,
		PasswordHash: entry.PasswordHash,
		Role:         entry.Role,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}, nil
}

// Set stores user under its id
func (c *RedisUserCache) Set(ctx context.Context, user *auth.User) error {
	data, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	return c.client.Set(ctx, userKey(user.ID), data, c.ttl).Err()
}

// Invalidate removes a user from the cache
func (c *RedisUserCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, userKey(id)).Err()
}
