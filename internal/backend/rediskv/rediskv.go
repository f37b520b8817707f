// Package rediskv implements storage.KV on top of Redis.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"taskflow/internal/storage"
)

// DefaultPrefix namespaces every key written by taskflow.
const DefaultPrefix = "taskflow:"

// PingTimeout bounds the connectivity check in Dial.
const PingTimeout = 2 * time.Second

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store keeps slots as plain Redis strings under Prefix+key.
type Store struct {
	client *redis.Client
	prefix string
}

// Dial connects to Redis and pings it. The connection is closed on failure.
func Dial(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix means DefaultPrefix.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Get implements storage.KV.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Set implements storage.KV. Slots never expire.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Delete implements storage.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
