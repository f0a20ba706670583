// Package redis implements kv.Store on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/diagrammer/pkg/kv"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "diagrammer:".
	Prefix string
}

// Store is a kv.Store backed by Redis. Values never expire.
type Store struct {
	client *redis.Client
	prefix string
}

// Open connects to Redis and verifies the connection. A failed ping is
// reported as kv.Transient so callers can retry while the server starts.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, kv.Transient(fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err))
	}
	return &Store{client: client, prefix: cfg.Prefix}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate(err)
	}
	return data, true, nil
}

// Set stores data under key without expiry.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	return translate(s.client.Set(ctx, s.prefix+key, data, 0).Err())
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return translate(s.client.Del(ctx, s.prefix+key).Err())
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func translate(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return kv.ErrClosed
	}
	return err
}

var _ kv.Store = (*Store)(nil)
