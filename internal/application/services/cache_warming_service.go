package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
)

const warmTopClinics = 50

// CacheWarmingService pre-loads the read-through clinic cache at startup
type CacheWarmingService struct {
	clinics repositories.ClinicRepository
}

// NewCacheWarmingService creates a new cache warming service. clinics should
// be the cached repository; reading through it fills the cache.
func NewCacheWarmingService(clinics repositories.ClinicRepository) *CacheWarmingService {
	return &CacheWarmingService{clinics: clinics}
}

// WarmCache loads the full clinic list used by every ranking query, then the
// individual records of the best rated clinics. Failures are logged only.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()

	if err := s.warmClinicList(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to warm clinic list")
	}

	warmed, err := s.warmTopClinics(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to warm top clinics")
	}

	log.Info().Int("clinics", warmed).Dur("took", time.Since(start)).Msg("cache warming completed")
	return nil
}

func (s *CacheWarmingService) warmClinicList(ctx context.Context) error {
	if _, err := s.clinics.List(ctx, repositories.ClinicFilter{}); err != nil {
		return fmt.Errorf("failed to fetch clinics: %w", err)
	}
	return nil
}

func (s *CacheWarmingService) warmTopClinics(ctx context.Context) (int, error) {
	top, err := s.clinics.List(ctx, repositories.ClinicFilter{
		OrderBy: repositories.OrderByRating,
		Limit:   warmTopClinics,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch top clinics: %w", err)
	}

	warmed := 0
	for _, c := range top {
		if _, err := s.clinics.GetByID(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("clinic_id", c.ID).Msg("failed to warm clinic")
			continue
		}
		warmed++
	}
	return warmed, nil
}
