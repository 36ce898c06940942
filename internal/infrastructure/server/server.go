package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpHandlers "github.com/gptdir/core/internal/adapters/http"
	"github.com/gptdir/core/internal/adapters/repository"
	"github.com/gptdir/core/internal/application/services"
	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/config"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
	"github.com/gptdir/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo         *echo.Echo
	config       *config.Config
	logger       *logger.Logger
	catalogStore *jsonstore.Store[entities.Document]
	leadsStore   *jsonstore.Store[entities.Leads]
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance wired onto the two document stores
func New(cfg *config.Config, catalogStore *jsonstore.Store[entities.Document], leadsStore *jsonstore.Store[entities.Leads], appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(catalogStore)
	leadRepo := repository.NewLeadRepository(leadsStore)

	// Initialize services
	authService := services.NewAuthService(cfg.JWT, cfg.Admin, appLogger)
	catalogService := services.NewCatalogService(catalogRepo, appLogger)
	leadService := services.NewLeadService(leadRepo, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService, appLogger)
	leadHandler := httpHandlers.NewLeadHandler(leadService, appLogger)

	server := &Server{
		echo:         e,
		config:       cfg,
		logger:       appLogger,
		catalogStore: catalogStore,
		leadsStore:   leadsStore,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(authHandler, catalogHandler, leadHandler, authService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Body size cap for incoming payloads
	s.echo.Use(middleware.BodyLimit(s.config.Security.MaxBodySize))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, catalogHandler *httpHandlers.CatalogHandler, leadHandler *httpHandlers.LeadHandler, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public catalog routes
	v1.GET("/catalog", catalogHandler.GetCatalog)
	v1.GET("/items", catalogHandler.ListPublicItems)

	// Public submission routes share one rate limit budget per client IP
	submitLimiter := s.submitRateLimiter()
	v1.POST("/items/submit", catalogHandler.SubmitItem, submitLimiter)
	v1.POST("/leads", leadHandler.SubmitLead, submitLimiter)

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	// Admin routes (bearer token)
	adminGroup := v1.Group("/admin", s.authMiddleware(authService))
	adminGroup.GET("/items", catalogHandler.ListItems)
	adminGroup.POST("/items", catalogHandler.CreateItem)
	adminGroup.GET("/items/:id", catalogHandler.GetItem)
	adminGroup.PUT("/items/:id", catalogHandler.UpdateItem)
	adminGroup.DELETE("/items/:id", catalogHandler.DeleteItem)
	adminGroup.GET("/leads", leadHandler.ListLeads)
	adminGroup.GET("/settings", catalogHandler.GetSettings)
	adminGroup.PUT("/settings", catalogHandler.UpdateSettings)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Store activity, pulled from the stores' own counters
	registerStoreCollectors(registry, "catalog", s.catalogStore.Stats)
	registerStoreCollectors(registry, "leads", s.leadsStore.Stats)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// registerStoreCollectors exposes one store's mutation counters and queue
// depth under a shared metric family with a store label.
func registerStoreCollectors(registry *prometheus.Registry, store string, stats func() jsonstore.Stats) {
	labels := prometheus.Labels{"store": store}

	registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "store_mutations_total",
			Help:        "Mutations applied and persisted",
			ConstLabels: labels,
		},
		func() float64 { return float64(stats().Applied) },
	))

	registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "store_mutator_errors_total",
			Help:        "Mutations rejected by the mutator",
			ConstLabels: labels,
		},
		func() float64 { return float64(stats().MutatorErrors) },
	))

	registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name:        "store_persist_failures_total",
			Help:        "Document writes that failed after the mutator ran",
			ConstLabels: labels,
		},
		func() float64 { return float64(stats().PersistFailures) },
	))

	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "store_queue_depth",
			Help:        "Mutations admitted but not yet applied",
			ConstLabels: labels,
		},
		func() float64 { return float64(stats().QueueDepth) },
	))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	checks := map[string]interface{}{
		"catalog_store": storeCheck(s.catalogStore.Path(), s.catalogStore.Stats()),
		"leads_store":   storeCheck(s.leadsStore.Path(), s.leadsStore.Stats()),
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	})
}

func storeCheck(path string, stats jsonstore.Stats) map[string]interface{} {
	return map[string]interface{}{
		"status":           "ok",
		"path":             path,
		"mutations":        stats.Applied,
		"mutator_errors":   stats.MutatorErrors,
		"persist_failures": stats.PersistFailures,
		"queue_depth":      stats.QueueDepth,
	}
}

func (s *Server) readinessCheck(c echo.Context) error {
	// The stores loaded at startup or the process would not be running;
	// once the server accepts connections it is ready.
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if ve, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": ve.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if _, ok := msg.(string); ok {
			msg = map[string]interface{}{"message": msg}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
