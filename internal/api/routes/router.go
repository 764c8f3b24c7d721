package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/vetclinicdiscovery/internal/api/handlers"
	"github.com/zatekoja/vetclinicdiscovery/internal/api/middleware"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
)

// HealthCheck reports whether a backing store is reachable
type HealthCheck func(ctx context.Context) error

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	clinicHandler         *handlers.ClinicHandler
	reviewHandler         *handlers.ReviewHandler
	recommendationHandler *handlers.RecommendationHandler
	discoveryHandler      *handlers.DiscoveryHandler
	snapshotHandler       *handlers.SnapshotHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
	health          HealthCheck
}

// NewRouter creates a new router. cacheMiddleware, metrics and health may be nil.
func NewRouter(
	clinicHandler *handlers.ClinicHandler,
	reviewHandler *handlers.ReviewHandler,
	recommendationHandler *handlers.RecommendationHandler,
	discoveryHandler *handlers.DiscoveryHandler,
	snapshotHandler *handlers.SnapshotHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
	health HealthCheck,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		clinicHandler:         clinicHandler,
		reviewHandler:         reviewHandler,
		recommendationHandler: recommendationHandler,
		discoveryHandler:      discoveryHandler,
		snapshotHandler:       snapshotHandler,
		cacheMiddleware:       cacheMiddleware,
		metrics:               metrics,
		allowedOrigins:        allowedOrigins,
		health:                health,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthCheck)
	r.mux.Handle("GET /metrics", observability.MetricsHandler())

	// Clinic directory
	r.mux.HandleFunc("POST /api/clinics", r.clinicHandler.RegisterClinic)
	r.mux.HandleFunc("GET /api/clinics", r.clinicHandler.ListClinics)
	r.mux.HandleFunc("GET /api/clinics/{id}", r.clinicHandler.GetClinic)
	r.mux.HandleFunc("PUT /api/clinics/{id}", r.clinicHandler.UpdateClinic)
	r.mux.HandleFunc("DELETE /api/clinics/{id}", r.clinicHandler.DeleteClinic)
	r.mux.HandleFunc("POST /api/clinics/{id}/services", r.clinicHandler.AddService)
	r.mux.HandleFunc("GET /api/clinics/{id}/services", r.clinicHandler.ListServices)
	r.mux.HandleFunc("POST /api/clinics/{id}/working-hours", r.clinicHandler.AddWorkingHours)
	r.mux.HandleFunc("GET /api/clinics/{id}/working-hours", r.clinicHandler.ListWorkingHours)

	// Reviews
	r.mux.HandleFunc("POST /api/clinics/{id}/reviews", r.reviewHandler.SubmitReview)
	r.mux.HandleFunc("GET /api/clinics/{id}/reviews", r.reviewHandler.ListReviews)

	// Discovery; the literal segments win over {id}
	r.mux.HandleFunc("GET /api/clinics/nearby", r.discoveryHandler.Nearby)
	r.mux.HandleFunc("GET /api/clinics/popular", r.discoveryHandler.Popular)
	r.mux.HandleFunc("GET /api/clinics/search", r.discoveryHandler.Search)

	// Recommendations
	r.mux.HandleFunc("POST /api/recommendations", r.recommendationHandler.Recommend)
	r.mux.HandleFunc("GET /api/clinics/{id}/similar", r.recommendationHandler.SimilarClinics)

	// Backup and restore
	r.mux.HandleFunc("GET /api/admin/export", r.snapshotHandler.Export)
	r.mux.HandleFunc("POST /api/admin/import", r.snapshotHandler.Import)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics, r.routeOf)(handler)
	handler = middleware.Compression(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

// routeOf returns the pattern the mux would dispatch req to, or "" when unmatched
func (r *Router) routeOf(req *http.Request) string {
	_, pattern := r.mux.Handler(req)
	return pattern
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if r.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := r.health(ctx); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("health check failed")
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
