package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"logistock/internal/config"
	"logistock/internal/events"
	custommiddleware "logistock/internal/middleware"
	"logistock/internal/service"
	"logistock/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// HealthChecker reports the status of the database
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Dependencies are the collaborators built by main and served over HTTP
type Dependencies struct {
	Database  HealthChecker
	Products  service.ProductService
	Publisher events.Publisher
	// Redis is only required when rate limiting is enabled
	Redis *redis.Client
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	deps    Dependencies
	closers []func() error
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
	}

	if deps.Publisher != nil {
		s.closers = append(s.closers, deps.Publisher.Close)
	}
	if deps.Redis != nil {
		s.closers = append(s.closers, deps.Redis.Close)
	}

	return s
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(requestTimeout)...)
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(s.config.Server.AllowedOrigins, s.config.IsDevelopment()))

	router.Get("/health", s.health)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RequireJSON(s.logger))
		transport.NewProductHandler(s.deps.Products, s.logger).RegisterRoutes(r, s.guards())
	})

	if s.config.Tracing.Endpoint == "" {
		return router
	}
	return otelhttp.NewHandler(router, s.config.Tracing.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)
}

// limiter returns the Redis rate limiter, or a passthrough when limiting is off
func (s *Server) limiter() func(http.Handler) http.Handler {
	if !s.config.RateLimit.Enabled || s.deps.Redis == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return custommiddleware.RateLimitMiddleware(s.deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: s.config.RateLimit.Requests,
		Window:            s.config.RateLimit.Window,
		KeyPrefix:         "logistock_rate_limit",
	}, s.logger)
}

// guards protects mutating routes when a JWT secret is configured.
// Stock changes need the operator or admin role, deletion needs admin.
// Authentication runs before the limiter so callers with a token are counted per user.
func (s *Server) guards() transport.Guards {
	limit := s.limiter()

	if s.config.JWT.Secret == "" {
		s.logger.Warn("JWT_SECRET not set, product mutations are unauthenticated")
		return transport.Guards{Read: limit, Write: limit, Delete: limit}
	}

	auth := custommiddleware.AuthMiddleware(s.config.JWT.Secret, s.logger)
	writers := custommiddleware.RequireRole(custommiddleware.StockWriterRoles, s.logger)
	admins := custommiddleware.RequireAdmin(s.logger)

	return transport.Guards{
		Read:   limit,
		Write:  func(next http.Handler) http.Handler { return auth(limit(writers(next))) },
		Delete: func(next http.Handler) http.Handler { return auth(limit(admins(next))) },
	}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Database map[string]string `json:"database"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	db := s.deps.Database.Health(r.Context())

	if db["status"] != "up" {
		s.logger.Warn("Health check failed", zap.String("error", db["error"]))
		custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: db})
		return
	}
	custommiddleware.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: db})
}

// Close releases the publisher and Redis client. The database is closed by its owner.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var err error
	for _, closer := range s.closers {
		err = errors.Join(err, closer())
	}
	if err != nil {
		s.logger.Error("Failed to close server resources", zap.Error(err))
	}

	_ = s.logger.Sync()
	return err
}
