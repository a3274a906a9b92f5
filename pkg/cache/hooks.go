package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/wiregraph/pkg/observability"
)

type hooked struct {
	Cache
}

// WithHooks reports every Get and Set of c to the registered cache hooks.
// The key type passed to the hooks is the key without its trailing hash,
// e.g. "nets" or "artifact:svg".
func WithHooks(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return hooked{Cache: c}
}

func (h hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (h hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := h.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
