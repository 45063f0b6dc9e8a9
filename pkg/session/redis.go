package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON strings with a TTL matching their
// expiry. The ID of the most recently updated session is kept under a
// separate key for Latest.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore uses client with keys under prefix (default
// "brickguide:session:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "brickguide:session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string { return r.prefix + id }
func (r *RedisStore) latestKey() string    { return r.prefix + "latest" }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (r *RedisStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(sess.ID), data, ttl)
	pipe.Set(ctx, r.latestKey(), sess.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) Latest(ctx context.Context) (*Session, error) {
	id, err := r.client.Get(ctx, r.latestKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest session: %w", err)
	}
	return r.Get(ctx, id)
}

// Cleanup is a no-op; Redis expires keys itself.
func (r *RedisStore) Cleanup(context.Context) error { return nil }

var _ Store = (*RedisStore)(nil)
