package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mockinterview/models"
)

const sessionKeyPrefix = "interview:session:"

// RedisSessionStore keeps sessions as JSON values with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

var _ SessionStore = (*RedisSessionStore)(nil)

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}
