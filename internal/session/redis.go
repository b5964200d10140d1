package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ugbmonitor/internal/config"
)

// RedisStore keeps session state as JSON values under prefix+id, so
// several web processes can share sessions.
type RedisStore struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient creates a client from the session configuration.
func NewRedisClient(cfg config.SessionConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
}

// NewRedisStore wraps c. A zero ttl stores keys without expiry.
func NewRedisStore(c *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{c: c, prefix: prefix, ttl: ttl}
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	val, err := r.c.Get(ctx, r.prefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s State
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Put implements Store.
func (r *RedisStore) Put(ctx context.Context, id string, s *State) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if err := r.c.Set(ctx, r.prefix+id, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.c.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.c.Close()
}
