package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/providers"
)

// MemoryAdapter implements CacheProvider in process. It backs single-instance
// deployments and takes over when Redis is disabled or unreachable.
type MemoryAdapter struct {
	cache *gocache.Cache
}

// NewMemoryAdapter creates an in-process cache that sweeps expired keys every cleanupInterval
func NewMemoryAdapter(cleanupInterval time.Duration) providers.CacheProvider {
	return &MemoryAdapter{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, found := a.cache.Get(key)
	if !found {
		return nil, providers.ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return data, nil
}

func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := gocache.NoExpiration
	if expirationSeconds > 0 {
		expiration = time.Duration(expirationSeconds) * time.Second
	}
	// callers may reuse their buffer
	stored := make([]byte, len(value))
	copy(stored, value)
	a.cache.Set(key, stored, expiration)
	return nil
}

func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.cache.Delete(key)
	return nil
}

// DeletePattern supports the * and ? wildcards of Redis KEYS patterns.
// Unlike path.Match, * also spans '/' so URL-based keys can be invalidated.
func (a *MemoryAdapter) DeletePattern(_ context.Context, pattern string) error {
	for key := range a.cache.Items() {
		if globMatch(pattern, key) {
			a.cache.Delete(key)
		}
	}
	return nil
}

func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	_, found := a.cache.Get(key)
	return found, nil
}

func globMatch(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatch(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if s == "" {
				return false
			}
		default:
			if s == "" || s[0] != pattern[0] {
				return false
			}
		}
		pattern = pattern[1:]
		s = s[1:]
	}
	return s == ""
}
