package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/providers"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
)

const (
	clinicListPattern = "clinics:list:*"
	// HTTPCachePattern matches the keys written by the response cache middleware
	HTTPCachePattern = "http:*"
)

// CachedClinicAdapter wraps a ClinicRepository with read-through caching
type CachedClinicAdapter struct {
	adapter repositories.ClinicRepository
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

// NewCachedClinicAdapter creates a new cached clinic adapter; metrics may be nil
func NewCachedClinicAdapter(adapter repositories.ClinicRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedClinicAdapter {
	return &CachedClinicAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
		metrics: metrics,
	}
}

func clinicCacheKey(id string) string {
	return fmt.Sprintf("clinic:%s", id)
}

func clinicListCacheKey(filter repositories.ClinicFilter) string {
	return fmt.Sprintf("clinics:list:%s:%s:%t:%g:%s:%d:%d",
		strings.Join(filter.IDs, ","), filter.PriceRange, filter.EmergencyOnly,
		filter.MinRating, filter.OrderBy, filter.Limit, filter.Offset)
}

// GetByID retrieves a clinic by ID with caching
func (a *CachedClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	key := clinicCacheKey(id)

	var clinic entities.Clinic
	if a.load(ctx, key, "clinic", &clinic) {
		return &clinic, nil
	}

	found, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, found)
	return found, nil
}

// GetByEmail is not cached; it only backs uniqueness checks
func (a *CachedClinicAdapter) GetByEmail(ctx context.Context, email string) (*entities.Clinic, error) {
	return a.adapter.GetByEmail(ctx, email)
}

// List retrieves clinics with caching
func (a *CachedClinicAdapter) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	key := clinicListCacheKey(filter)

	var clinics []*entities.Clinic
	if a.load(ctx, key, "clinics:list", &clinics) {
		return clinics, nil
	}

	clinics, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, clinics)
	return clinics, nil
}

// Create creates a clinic and invalidates list caches
func (a *CachedClinicAdapter) Create(ctx context.Context, clinic *entities.Clinic) error {
	if err := a.adapter.Create(ctx, clinic); err != nil {
		return err
	}
	a.Invalidate(ctx, "")
	return nil
}

// Update updates a clinic and invalidates its caches
func (a *CachedClinicAdapter) Update(ctx context.Context, clinic *entities.Clinic) error {
	if err := a.adapter.Update(ctx, clinic); err != nil {
		return err
	}
	a.Invalidate(ctx, clinic.ID)
	return nil
}

// Delete deletes a clinic and invalidates its caches
func (a *CachedClinicAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached clinic (when id is set), every cached list and
// every cached HTTP response. Failures are logged; stale entries expire by TTL.
func (a *CachedClinicAdapter) Invalidate(ctx context.Context, id string) {
	if id != "" {
		if err := a.cache.Delete(ctx, clinicCacheKey(id)); err != nil {
			log.Warn().Err(err).Str("clinic_id", id).Msg("failed to invalidate clinic cache")
		}
	}
	for _, pattern := range []string{clinicListPattern, HTTPCachePattern} {
		if err := a.cache.DeletePattern(ctx, pattern); err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("failed to invalidate cache pattern")
		}
	}
}

func (a *CachedClinicAdapter) load(ctx context.Context, key, name string, dst interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		observability.RecordCacheMiss(ctx, a.metrics, name)
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		observability.RecordCacheMiss(ctx, a.metrics, name)
		return false
	}
	observability.RecordCacheHit(ctx, a.metrics, name)
	return true
}

func (a *CachedClinicAdapter) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal value for cache")
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}

// CachedReviewAdapter invalidates clinic caches whenever a review changes a rating
type CachedReviewAdapter struct {
	repositories.ReviewRepository
	clinics *CachedClinicAdapter
}

// NewCachedReviewAdapter wraps reviews so new ratings are never served stale
func NewCachedReviewAdapter(adapter repositories.ReviewRepository, clinics *CachedClinicAdapter) repositories.ReviewRepository {
	return &CachedReviewAdapter{ReviewRepository: adapter, clinics: clinics}
}

// Create inserts the review and invalidates the clinic's caches
func (a *CachedReviewAdapter) Create(ctx context.Context, review *entities.Review) (*entities.RatingSummary, error) {
	summary, err := a.ReviewRepository.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	a.clinics.Invalidate(ctx, review.ClinicID)
	return summary, nil
}

// CachedServiceAdapter drops cached responses after a clinic gains a service
type CachedServiceAdapter struct {
	repositories.ServiceRepository
	clinics *CachedClinicAdapter
}

// NewCachedServiceAdapter wraps services with response cache invalidation
func NewCachedServiceAdapter(adapter repositories.ServiceRepository, clinics *CachedClinicAdapter) repositories.ServiceRepository {
	return &CachedServiceAdapter{ServiceRepository: adapter, clinics: clinics}
}

// Create inserts the service and invalidates cached responses
func (a *CachedServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	if err := a.ServiceRepository.Create(ctx, service); err != nil {
		return err
	}
	a.clinics.Invalidate(ctx, "")
	return nil
}
