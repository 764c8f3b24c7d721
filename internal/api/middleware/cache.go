package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/providers"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
)

// ResponseCacheKeyPrefix namespaces cached responses; writes that change
// ranking inputs delete every key under it.
const ResponseCacheKeyPrefix = "http:"

// CacheMiddleware caches successful GET responses of the read-heavy ranking routes
type CacheMiddleware struct {
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
	cacheable  func(path string) bool
}

// NewCacheMiddleware creates a new cache middleware; cache may be nil to disable it
func NewCacheMiddleware(cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
		cacheable:  isRankingRoute,
	}
}

// isRankingRoute matches nearby, popular, search and /api/clinics/{id}/similar
func isRankingRoute(path string) bool {
	switch path {
	case "/api/clinics/nearby", "/api/clinics/popular", "/api/clinics/search":
		return true
	}
	rest, ok := strings.CutPrefix(path, "/api/clinics/")
	if !ok {
		return false
	}
	id, ok := strings.CutSuffix(rest, "/similar")
	return ok && id != "" && !strings.Contains(id, "/")
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil || !m.cacheable(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		cacheKey := m.generateCacheKey(r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, "http")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, "http")
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), m.ttlSeconds); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

// generateCacheKey hashes method, path and query into a bounded key
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := fmt.Sprintf("%s:%s", r.Method, r.URL.Path)
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}

	hash := sha256.Sum256([]byte(key))
	return ResponseCacheKeyPrefix + "cache:" + hex.EncodeToString(hash[:])
}

// InvalidateCache drops every cached response
func (m *CacheMiddleware) InvalidateCache(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}
	return m.cache.DeletePattern(ctx, ResponseCacheKeyPrefix+"*")
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
