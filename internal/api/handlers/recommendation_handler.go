package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// Recommender defines the ranking operations used by the handler
type Recommender interface {
	Recommend(ctx context.Context, req entities.RecommendationRequest) (*entities.RecommendationResult, error)
	SimilarClinics(ctx context.Context, clinicID string, topN int) (*entities.SimilarClinicsResult, error)
}

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	recommender Recommender
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender}
}

// requestFlags are the capability flags accepted as boolean query parameters.
// wild_animals is a clinic-level requirement and handled separately.
var requestFlags = []entities.CapabilityFlag{
	entities.FlagHotelCats,
	entities.FlagHotelDogs,
	entities.FlagGrooming,
	entities.FlagSurgery,
	entities.FlagVaccination,
	entities.FlagDentalCare,
}

// Recommend handles POST /api/recommendations. The request comes either as a
// JSON body or, when no body is sent, as query parameters.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req entities.RecommendationRequest
	if hasJSONBody(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		parsed, err := recommendationFromQuery(newQueryParams(r))
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		req = parsed
	}

	result, err := h.recommender.Recommend(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SimilarClinics handles GET /api/clinics/{id}/similar
func (h *RecommendationHandler) SimilarClinics(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	topN := q.getInt("top_n", 0)
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}

	result, err := h.recommender.SimilarClinics(r.Context(), r.PathValue("id"), topN)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func recommendationFromQuery(q *queryParams) (entities.RecommendationRequest, error) {
	q.require("user_lat")
	q.require("user_lon")

	req := entities.RecommendationRequest{
		UserLocation: geo.Point{
			Latitude:  q.getFloat("user_lat", 0),
			Longitude: q.getFloat("user_lon", 0),
		},
		RequiredEquipment:  splitList(q.get("equipment")),
		PreferredPrice:     q.get("preferred_price"),
		NeedsEmergency:     q.getBool("needs_emergency"),
		RequireInpatient:   q.getBool("inpatient"),
		RequireWildAnimals: q.getBool("wild_animals"),
		MaxDistanceKm:      q.getFloat("max_distance_km", 0),
		TopN:               q.getInt("top_n", 0),
		MatchMode:          entities.MatchMode(strings.ToLower(q.get("match_mode"))),
		EmergencyPolicy:    entities.EmergencyPolicy(strings.ToLower(q.get("emergency_policy"))),
	}
	if q.has("min_rating") {
		minRating := q.getFloat("min_rating", 0)
		req.MinRating = &minRating
	}

	// one requirement per comma-separated term, so each is matched on its own
	for _, condition := range splitList(q.get("conditions")) {
		req.RequiredServices = append(req.RequiredServices, entities.ServiceRequirement{Condition: condition})
	}
	for _, flag := range requestFlags {
		if q.getBool(string(flag)) {
			req.RequiredServices = append(req.RequiredServices, entities.ServiceRequirement{
				Flags: []entities.CapabilityFlag{flag},
			})
		}
	}

	if q.err != nil {
		return entities.RecommendationRequest{}, q.err
	}
	return req, nil
}

func hasJSONBody(r *http.Request) bool {
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody &&
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
