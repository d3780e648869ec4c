package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: time.Hour,
	}
}

// Noop is used when no cache backend is configured. Every lookup misses.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (Noop) Get(ctx context.Context, key string, value interface{}) error {
	return ErrNotFound
}

func (Noop) Delete(ctx context.Context, key string) error {
	return nil
}

func (Noop) Clear(ctx context.Context) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
