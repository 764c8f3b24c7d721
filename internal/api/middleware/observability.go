package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
)

// RouteResolver maps a request to its registered route pattern
type RouteResolver func(r *http.Request) string

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests.
// resolve may be nil, in which case the raw path is used.
func ObservabilityMiddleware(metrics *observability.Metrics, resolve RouteResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// route pattern, not raw path, to keep cardinality bounded
			route := ""
			if resolve != nil {
				route = resolve(r)
			}
			if route == "" {
				route = r.URL.Path
			}

			ctx, span := observability.StartSpan(r.Context(), route)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rw, r.WithContext(ctx))

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			span.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
		})
	}
}
