package cache

import (
	"context"
	"strings"
	"time"
)

// keyPrefix namespaces every entry so this backend can share a Redis with
// other deployments without key collisions.
const keyPrefix = "clockpro"

// Key joins the parts into a namespaced cache key, e.g.
// Key("weather", "current", "52.5200:13.4050", "metric").
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
