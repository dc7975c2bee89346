package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. A missing key is reported
// through the boolean, not as an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Noop is a Cache that stores nothing. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                  { return nil }
func (Noop) Close() error                                             { return nil }
