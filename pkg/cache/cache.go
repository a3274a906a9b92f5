// Package cache stores derived artifacts of schematic snapshots: extracted
// netlists and rendered drawings.
//
// Entries are keyed by the content hash of the snapshot plus the options
// that influenced the result, so an unchanged schematic is never extracted
// twice. Three backends are provided:
//
//   - [FileCache] for the CLI, one JSON file per entry under a directory
//   - [RedisCache] for the HTTP API, shared between server instances
//   - [NullCache] when caching is disabled
//
// [WithHooks] wraps any backend so that hits, misses and writes are reported
// to the registered [observability.CacheHooks].
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry type.
const (
	TTLNets     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error; a non-nil error
// means the backend itself failed.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clear removes every entry of c. ok is false when the backend has no
// bulk deletion, as for [NullCache].
func Clear(ctx context.Context, c Cache) (n int, ok bool, err error) {
	for {
		switch b := c.(type) {
		case *FileCache:
			n, err = b.Clear(ctx)
			return n, true, err
		case *RedisCache:
			n, err = b.Clear(ctx, "")
			return n, true, err
		case hooked:
			c = b.Cache
		default:
			return 0, false, nil
		}
	}
}
