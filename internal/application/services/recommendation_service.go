package services

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

// EmptyStoreMessage accompanies a recommendation result when no clinic exists at all
const EmptyStoreMessage = "No clinics found in database"

// RecommendationService ranks clinics for a requester and finds similar clinics
type RecommendationService struct {
	clinics  repositories.ClinicRepository
	services repositories.ServiceRepository
	defaults config.RecommendationConfig
	metrics  *observability.Metrics
}

// NewRecommendationService creates a new recommendation service; metrics may be nil
func NewRecommendationService(
	clinics repositories.ClinicRepository,
	services repositories.ServiceRepository,
	defaults config.RecommendationConfig,
	metrics *observability.Metrics,
) *RecommendationService {
	return &RecommendationService{
		clinics:  clinics,
		services: services,
		defaults: defaults,
		metrics:  metrics,
	}
}

// Recommend returns the top clinics for req, best first
func (s *RecommendationService) Recommend(ctx context.Context, req entities.RecommendationRequest) (*entities.RecommendationResult, error) {
	ctx, span := observability.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()

	if err := s.normalize(&req); err != nil {
		return nil, err
	}

	clinics, servicesByClinic, err := s.loadSnapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	result := &entities.RecommendationResult{
		UserLocation:    req.UserLocation,
		Filters:         filtersOf(&req),
		Recommendations: []entities.ScoreBreakdown{},
	}
	if len(clinics) == 0 {
		result.StoreEmpty = true
		result.Message = EmptyStoreMessage
		return result, nil
	}

	serviceReqs := req.RequiredServices
	equipmentReqs := EquipmentRequirements(req.RequiredEquipment)
	combinedReqs := append(append([]entities.ServiceRequirement{}, serviceReqs...), equipmentReqs...)

	scored := make([]entities.ScoreBreakdown, 0, len(clinics))
	candidates := 0
	for _, clinic := range clinics {
		if !passesHardFilters(clinic, &req) {
			continue
		}
		candidates++

		caps := CapabilitiesFromServices(servicesByClinic[clinic.ID])
		var match MatchScores
		if req.MatchMode == entities.MatchModeSplit {
			equipment := MatchScore(caps, equipmentReqs)
			match = MatchScores{Service: MatchScore(caps, serviceReqs), Equipment: &equipment}
		} else {
			match = MatchScores{Service: MatchScore(caps, combinedReqs)}
		}

		if breakdown, ok := ComposeScore(clinic, &req, match); ok {
			scored = append(scored, breakdown)
		}
	}

	sortBreakdowns(scored)

	result.TotalFound = len(scored)
	if len(scored) > req.TopN {
		scored = scored[:req.TopN]
	}
	result.ShowingTop = len(scored)
	result.Recommendations = scored

	span.SetAttributes(
		attribute.Int("recommendation.candidates", candidates),
		attribute.Int("recommendation.eligible", result.TotalFound),
	)
	observability.RecordRecommendation(ctx, s.metrics, string(req.MatchMode), candidates)
	observability.LoggerFromContext(ctx).Debug().
		Int("clinics", len(clinics)).
		Int("candidates", candidates).
		Int("eligible", result.TotalFound).
		Str("match_mode", string(req.MatchMode)).
		Msg("recommendations computed")

	return result, nil
}

// SimilarClinics ranks every other clinic by capability and price similarity to clinicID
func (s *RecommendationService) SimilarClinics(ctx context.Context, clinicID string, topN int) (*entities.SimilarClinicsResult, error) {
	ctx, span := observability.StartSpan(ctx, "RecommendationService.SimilarClinics")
	defer span.End()

	if topN <= 0 {
		topN = s.defaults.DefaultSimilarTopN
	}

	reference, err := s.clinics.GetByID(ctx, clinicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	clinics, servicesByClinic, err := s.loadSnapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	refVector := VectorFromServices(servicesByClinic[reference.ID])
	similar := make([]entities.SimilarClinic, 0, len(clinics))
	for _, c := range clinics {
		if c.ID == reference.ID {
			continue
		}
		similar = append(similar, entities.SimilarClinic{
			ClinicID:        c.ID,
			Name:            c.Name,
			SimilarityScore: Similarity(refVector, VectorFromServices(servicesByClinic[c.ID]), reference.PriceRange, c.PriceRange),
			Rating:          c.Rating,
			PriceRange:      c.PriceRange,
			Phone:           c.Phone,
			Address:         c.Address,
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].SimilarityScore != similar[j].SimilarityScore {
			return similar[i].SimilarityScore > similar[j].SimilarityScore
		}
		if similar[i].Name != similar[j].Name {
			return similar[i].Name < similar[j].Name
		}
		return similar[i].ClinicID < similar[j].ClinicID
	})
	if len(similar) > topN {
		similar = similar[:topN]
	}

	return &entities.SimilarClinicsResult{
		ReferenceClinicID:   reference.ID,
		ReferenceClinicName: reference.Name,
		Similar:             similar,
	}, nil
}

// loadSnapshot reads all clinics and all service rows concurrently
func (s *RecommendationService) loadSnapshot(ctx context.Context) ([]*entities.Clinic, map[string][]*entities.Service, error) {
	var (
		clinics          []*entities.Clinic
		servicesByClinic map[string][]*entities.Service
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clinics, err = s.clinics.List(gctx, repositories.ClinicFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		servicesByClinic, err = s.services.ListByClinics(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return clinics, servicesByClinic, nil
}

// normalize fills defaults and rejects requests that cannot be scored
func (s *RecommendationService) normalize(req *entities.RecommendationRequest) error {
	if !req.UserLocation.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf(
			"invalid user location (%v, %v)", req.UserLocation.Latitude, req.UserLocation.Longitude))
	}
	if !isFinite(req.MaxDistanceKm) || req.MaxDistanceKm < 0 {
		return apperrors.NewValidationError("max_distance_km must be a positive number")
	}
	if req.MaxDistanceKm == 0 {
		req.MaxDistanceKm = s.defaults.DefaultMaxDistanceKm
	}
	if req.TopN < 0 {
		return apperrors.NewValidationError("top_n must be positive")
	}
	if req.TopN == 0 {
		req.TopN = s.defaults.DefaultTopN
	}
	if req.MinRating != nil && !(*req.MinRating >= 0 && *req.MinRating <= maxClinicRating) {
		return apperrors.NewValidationError("min_rating must be between 0 and 5")
	}

	if req.MatchMode == "" {
		req.MatchMode = entities.MatchMode(s.defaults.MatchMode)
	}
	switch req.MatchMode {
	case entities.MatchModeCombined, entities.MatchModeSplit:
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown match_mode %q", req.MatchMode))
	}

	if req.EmergencyPolicy == "" {
		req.EmergencyPolicy = entities.EmergencyPolicy(s.defaults.EmergencyPolicy)
	}
	switch req.EmergencyPolicy {
	case entities.EmergencyPolicySoft, entities.EmergencyPolicyHard:
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown emergency_policy %q", req.EmergencyPolicy))
	}

	reqs := make([]entities.ServiceRequirement, 0, len(req.RequiredServices))
	for _, r := range req.RequiredServices {
		if !r.IsEmpty() {
			reqs = append(reqs, r)
		}
	}
	req.RequiredServices = reqs

	return nil
}

func passesHardFilters(clinic *entities.Clinic, req *entities.RecommendationRequest) bool {
	if req.RequireInpatient && !clinic.InpatientCare {
		return false
	}
	if req.RequireWildAnimals && !clinic.WildAnimals {
		return false
	}
	if req.MinRating != nil && clinic.Rating < *req.MinRating {
		return false
	}
	if req.NeedsEmergency && req.EmergencyPolicy == entities.EmergencyPolicyHard && !clinic.EmergencyService {
		return false
	}
	return true
}

// sortBreakdowns orders by total desc, then nearer first, then name
func sortBreakdowns(b []entities.ScoreBreakdown) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].TotalScore != b[j].TotalScore {
			return b[i].TotalScore > b[j].TotalScore
		}
		if b[i].DistanceKm != b[j].DistanceKm {
			return b[i].DistanceKm < b[j].DistanceKm
		}
		if b[i].ClinicName != b[j].ClinicName {
			return b[i].ClinicName < b[j].ClinicName
		}
		return b[i].ClinicID < b[j].ClinicID
	})
}

func filtersOf(req *entities.RecommendationRequest) entities.RecommendationFilters {
	equipment := req.RequiredEquipment
	if equipment == nil {
		equipment = []string{}
	}
	return entities.RecommendationFilters{
		RequiredServices:  req.RequiredServices,
		RequiredEquipment: equipment,
		PreferredPrice:    req.PreferredPrice,
		NeedsEmergency:    req.NeedsEmergency,
		MinRating:         req.MinRating,
		MaxDistanceKm:     req.MaxDistanceKm,
		MatchMode:         req.MatchMode,
		EmergencyPolicy:   req.EmergencyPolicy,
	}
}
