package cache

import (
	"context"
	"time"
)

// Cache is a best-effort key/value store for read-side projections. A miss
// and an unreachable backend look the same to callers: empty value, fall
// through to the database.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Key(resource, id string) string
}
