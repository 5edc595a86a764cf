package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"halal-directory/internal/config"
	"halal-directory/internal/database"
	"halal-directory/internal/email"
	"halal-directory/internal/geocache"
	"halal-directory/internal/geocoding"
	"halal-directory/internal/media"
	"halal-directory/internal/metrics"
	custommiddleware "halal-directory/internal/middleware"
	"halal-directory/internal/repository"
	"halal-directory/internal/service"
	"halal-directory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMissingJWTSecret is returned when no token signing secret is configured
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set")

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers into one router.
// redisClient may be nil, which disables rate limiting and the redis geocode cache.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	m := metrics.New()

	cache, err := geocache.FromConfig(cfg.Geocoding, redisClient, logger)
	if err != nil {
		return nil, err
	}
	geocoder := geocoding.NewFromConfig(cfg.Geocoding, cache, m, logger)

	var uploader service.ImageUploader
	switch u, err := media.NewUploader(ctx, cfg.ImageUpload); {
	case err == nil:
		uploader = u
	case errors.Is(err, media.ErrNotConfigured):
		logger.Warn("Image upload is not configured; submitted images will be ignored")
	default:
		return nil, fmt.Errorf("failed to initialize image uploader: %w", err)
	}

	// Initialize repositories
	serviceRepo := repository.NewServiceRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())
	claimRepo := repository.NewClaimRepository(db.DB())

	// Initialize services
	listingService := service.NewListingService(serviceRepo, categoryRepo, geocoder, uploader, m, logger)
	searchService := service.NewSearchService(serviceRepo, geocoder, m)
	categoryService := service.NewCategoryService(categoryRepo)
	claimService := service.NewClaimService(serviceRepo, claimRepo, email.NewService(cfg.Email, logger), cfg.Server.PublicURL, m, logger)

	// Initialize handlers
	serviceHandler := transport.NewServiceHandler(listingService, searchService, claimService, logger)
	searchHandler := transport.NewSearchHandler(searchService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(m.Middleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))

	router.Get("/health", healthHandler(db))
	router.Handle("/metrics", m.Handler())

	router.Group(func(r chi.Router) {
		if redisClient != nil && cfg.RateLimit.Requests > 0 {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "ratelimit:api",
			}, logger))
		}

		authMiddleware := custommiddleware.AuthMiddleware(cfg.Auth.JWTSecret, logger)
		editorMiddleware := custommiddleware.RequireListingEditor(logger)

		serviceHandler.RegisterRoutes(r, authMiddleware, editorMiddleware)
		searchHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           router,
			IdleTimeout:       time.Minute,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Geocoding retries can wait 15s before the handler answers
			WriteTimeout: time.Minute,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
