package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/cache"
	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/database"
	"github.com/zatekoja/vetclinicdiscovery/internal/api/handlers"
	"github.com/zatekoja/vetclinicdiscovery/internal/api/middleware"
	"github.com/zatekoja/vetclinicdiscovery/internal/api/routes"
	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/providers"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/redis"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/migrations"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Environment, cfg.Log.Level)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry; the Prometheus exporter is always installed
	shutdown, err := observability.Setup(ctx, cfg.OTEL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("error shutting down OpenTelemetry")
			}
		}()
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	dbClient, err := sqldb.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database client")
	}
	defer dbClient.Close()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(dbClient, &cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis is optional; fall back to an in-process cache
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("redis cache initialized")
		}
	}
	if cacheProvider == nil {
		cacheProvider = cache.NewMemoryAdapter(time.Minute)
	}

	// Initialize adapters
	clinicAdapter := database.NewCachedClinicAdapter(
		database.NewClinicAdapter(dbClient),
		cacheProvider,
		cfg.Cache.ClinicTTL,
		metrics,
	)
	serviceAdapter := database.NewCachedServiceAdapter(database.NewServiceAdapter(dbClient), clinicAdapter)
	reviewAdapter := database.NewCachedReviewAdapter(database.NewReviewAdapter(dbClient), clinicAdapter)
	hoursAdapter := database.NewWorkingHoursAdapter(dbClient)

	// Initialize services
	clinicService := services.NewClinicService(clinicAdapter, serviceAdapter, hoursAdapter)
	reviewService := services.NewReviewService(reviewAdapter, clinicAdapter, metrics)
	recommendationService := services.NewRecommendationService(clinicAdapter, serviceAdapter, cfg.Recommendation, metrics)
	discoveryService := services.NewDiscoveryService(clinicAdapter, serviceAdapter)
	snapshotService := services.NewSnapshotService(clinicAdapter, serviceAdapter, reviewAdapter, hoursAdapter)

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		_ = services.NewCacheWarmingService(clinicAdapter).WarmCache(warmCtx)
	}()

	// Initialize handlers
	router := routes.NewRouter(
		handlers.NewClinicHandler(clinicService),
		handlers.NewReviewHandler(reviewService, cacheProvider, cfg.RateLimit.ReviewsPerHour),
		handlers.NewRecommendationHandler(recommendationService),
		handlers.NewDiscoveryHandler(discoveryService),
		handlers.NewSnapshotHandler(snapshotService),
		middleware.NewCacheMiddleware(cacheProvider, cfg.Cache.ResponseTTL, metrics),
		metrics,
		cfg.Server.AllowedOrigins,
		dbClient.Ping,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Str("driver", dbClient.Driver()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
