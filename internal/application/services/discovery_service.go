package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const (
	DefaultNearbyRadiusKm = 10.0
	DefaultPopularTopN    = 5

	popularityRatingWeight = 0.7
	popularityVolumeWeight = 0.3
	popularityFullVolume   = 10.0
)

// DiscoveryService answers the browse-style queries: nearby, popular and service search
type DiscoveryService struct {
	clinics  repositories.ClinicRepository
	services repositories.ServiceRepository
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(clinics repositories.ClinicRepository, services repositories.ServiceRepository) *DiscoveryService {
	return &DiscoveryService{
		clinics:  clinics,
		services: services,
	}
}

// Nearby lists every clinic within radiusKm of the user, nearest first
func (s *DiscoveryService) Nearby(ctx context.Context, user geo.Point, radiusKm float64) (*entities.NearbyResult, error) {
	if !user.Valid() {
		return nil, apperrors.NewValidationError("invalid user location")
	}
	if !isFinite(radiusKm) || radiusKm < 0 {
		return nil, apperrors.NewValidationError("radius_km must be a positive number")
	}
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	clinics, err := s.clinics.List(ctx, repositories.ClinicFilter{})
	if err != nil {
		return nil, err
	}

	nearby := make([]entities.NearbyClinic, 0)
	for _, c := range clinics {
		d := geo.DistanceTo(user, c.Location)
		if math.IsInf(d, 1) || d > radiusKm {
			continue
		}
		nearby = append(nearby, entities.NearbyClinic{
			ClinicID:   c.ID,
			Name:       c.Name,
			DistanceKm: round2(d),
			Rating:     c.Rating,
			Phone:      c.Phone,
			Address:    c.Address,
			PriceRange: c.PriceRange,
			Location:   c.Location,
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].Name < nearby[j].Name
	})

	return &entities.NearbyResult{
		UserLocation: user,
		RadiusKm:     radiusKm,
		Found:        len(nearby),
		Clinics:      nearby,
	}, nil
}

// PopularityScore weighs rating against review volume, saturating at ten reviews
func PopularityScore(rating float64, reviewCount int) float64 {
	volume := math.Min(float64(reviewCount)/popularityFullVolume, 1.0)
	return rating*popularityRatingWeight + volume*popularityVolumeWeight*maxClinicRating
}

// Popular returns the topN clinics by popularity score
func (s *DiscoveryService) Popular(ctx context.Context, topN int) ([]entities.PopularClinic, error) {
	if topN < 0 {
		return nil, apperrors.NewValidationError("top_n must be positive")
	}
	if topN == 0 {
		topN = DefaultPopularTopN
	}

	clinics, err := s.clinics.List(ctx, repositories.ClinicFilter{})
	if err != nil {
		return nil, err
	}

	popular := make([]entities.PopularClinic, 0, len(clinics))
	for _, c := range clinics {
		popular = append(popular, entities.PopularClinic{
			ClinicID:         c.ID,
			Name:             c.Name,
			Rating:           c.Rating,
			ReviewCount:      c.ReviewCount,
			PopularityScore:  round2(PopularityScore(c.Rating, c.ReviewCount)),
			Phone:            c.Phone,
			Address:          c.Address,
			PriceRange:       c.PriceRange,
			EmergencyService: c.EmergencyService,
		})
	}

	sort.SliceStable(popular, func(i, j int) bool {
		if popular[i].PopularityScore != popular[j].PopularityScore {
			return popular[i].PopularityScore > popular[j].PopularityScore
		}
		return popular[i].Name < popular[j].Name
	})
	if len(popular) > topN {
		popular = popular[:topN]
	}
	return popular, nil
}

// Search finds clinics offering a service, optionally emergency-only and
// above a rating floor, ordered by rating. Service may list several
// comma-separated terms; a clinic matching any of them is returned and its
// MatchScore tells how many of the terms its offered names cover.
func (s *DiscoveryService) Search(ctx context.Context, params entities.ClinicSearchParams) ([]entities.ClinicSearchResult, error) {
	if !(params.MinRating >= 0 && params.MinRating <= maxClinicRating) {
		return nil, apperrors.NewValidationError("min_rating must be between 0 and 5")
	}

	filter := repositories.ClinicFilter{
		EmergencyOnly: params.EmergencyOnly,
		MinRating:     params.MinRating,
		OrderBy:       repositories.OrderByRating,
	}

	terms := splitTerms(params.Service)
	offered := map[string][]string{}
	query := make([]entities.ServiceRequirement, 0, len(terms))
	for _, term := range terms {
		matches, err := s.services.ListMatching(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			offered[m.ClinicID] = appendOfferedNames(offered[m.ClinicID], m)
			filter.IDs = appendUnique(filter.IDs, m.ClinicID)
		}

		req := entities.ServiceRequirement{Condition: term, Equipment: term}
		if f, ok := entities.ParseCapabilityFlag(term); ok {
			req.Flags = []entities.CapabilityFlag{f}
		}
		query = append(query, req)
	}
	if len(terms) > 0 && len(filter.IDs) == 0 {
		return []entities.ClinicSearchResult{}, nil
	}

	clinics, err := s.clinics.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]entities.ClinicSearchResult, 0, len(clinics))
	for _, c := range clinics {
		names := offered[c.ID]
		if names == nil {
			names = []string{}
		}
		results = append(results, entities.ClinicSearchResult{
			Clinic:     c,
			Services:   names,
			MatchScore: round2(MatchScore(CapabilitiesFromNames(names), query) * 100),
		})
	}
	return results, nil
}

func splitTerms(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = appendUnique(terms, t)
		}
	}
	return terms
}

func appendOfferedNames(names []string, s *entities.Service) []string {
	for _, n := range []string{s.Condition, s.Equipment} {
		if n != "" {
			names = appendUnique(names, n)
		}
	}
	return names
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
