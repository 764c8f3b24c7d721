package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// DiscoveryService defines the browse queries used by the handler
type DiscoveryService interface {
	Nearby(ctx context.Context, user geo.Point, radiusKm float64) (*entities.NearbyResult, error)
	Popular(ctx context.Context, topN int) ([]entities.PopularClinic, error)
	Search(ctx context.Context, params entities.ClinicSearchParams) ([]entities.ClinicSearchResult, error)
}

// DiscoveryHandler handles nearby, popular and search requests
type DiscoveryHandler struct {
	service DiscoveryService
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(service DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

// Nearby handles GET /api/clinics/nearby
func (h *DiscoveryHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	q.require("user_lat")
	q.require("user_lon")
	user := geo.Point{Latitude: q.getFloat("user_lat", 0), Longitude: q.getFloat("user_lon", 0)}
	radius := q.getFloat("radius_km", 0)
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}

	result, err := h.service.Nearby(r.Context(), user, radius)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Popular handles GET /api/clinics/popular
func (h *DiscoveryHandler) Popular(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	topN := q.getInt("top_n", 0)
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}

	popular, err := h.service.Popular(r.Context(), topN)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"top_popular_clinics": popular,
	})
}

// Search handles GET /api/clinics/search
func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	params := entities.ClinicSearchParams{
		Service:       q.get("service"),
		EmergencyOnly: q.getBool("emergency"),
		MinRating:     q.getFloat("min_rating", 0),
	}
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}

	results, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
