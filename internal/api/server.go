package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/cropsevai/cropsevai-hub/internal/advisory"
	"github.com/cropsevai/cropsevai-hub/internal/api/handlers"
	mw "github.com/cropsevai/cropsevai-hub/internal/api/middleware"
	"github.com/cropsevai/cropsevai-hub/internal/auth"
	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability"
)

// Database states reported by /health.
const (
	DatabaseConnected   = "connected"
	DatabaseUnavailable = "unavailable"
	DatabaseTimeout     = "timeout"
)

// healthPingTimeout bounds the store ping made by /health.
const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK       bool    `json:"ok"`
	Uptime   float64 `json:"uptime"`
	Database string  `json:"database"`
}

// Server is the HTTP server for CropSevai Hub.
// It manages the Echo instance, the middleware stack and all routes.
type Server struct {
	// Core components
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	logger   logger.Logger

	// Dependencies
	dataStore   datastore.Interface
	metrics     *observability.Metrics
	advisory    *advisory.Service
	authService *auth.Service

	controller   *handlers.Controller
	staticServer *StaticFileServer

	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithDataStore sets the datastore for the server.
func WithDataStore(ds datastore.Interface) ServerOption {
	return func(s *Server) {
		s.dataStore = ds
	}
}

// WithMetrics sets the Prometheus metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAdvisoryService overrides the dashboard service built from settings.
func WithAdvisoryService(svc *advisory.Service) ServerOption {
	return func(s *Server) {
		s.advisory = svc
	}
}

// WithAuthService overrides the login service built from settings.
func WithAuthService(svc *auth.Service) ServerOption {
	return func(s *Server) {
		s.authService = svc
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:    config,
		settings:  settings,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewDiscardLogger()
	}
	s.logger = s.logger.Module("api")

	if s.dataStore == nil {
		return nil, fmt.Errorf("datastore is required")
	}
	if err := s.initServices(); err != nil {
		return nil, err
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	if config.Debug {
		s.echo.Logger.SetLevel(log.DEBUG)
	} else {
		s.echo.Logger.SetLevel(log.WARN)
	}

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.logger.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.Bool("require_auth", config.RequireAuth),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// initServices builds the dashboard and login services from settings
// unless they were injected.
func (s *Server) initServices() error {
	if s.advisory == nil {
		advOpts := []advisory.Option{
			advisory.WithCacheTTL(s.settings.Cache.DashboardTTL),
			advisory.WithLogger(s.logger),
		}
		if s.metrics != nil {
			advOpts = append(advOpts, advisory.WithCacheRecorder(s.metrics.Datastore))
		}
		s.advisory = advisory.NewService(s.dataStore, advOpts...)
	}

	if s.authService == nil {
		a := s.settings.Auth
		tokens, err := auth.NewTokenService(a.JWTSecret, a.TokenExpiry, a.Issuer)
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}
		authOpts := []auth.Option{
			auth.WithAutoProvision(a.AutoProvision),
			auth.WithBcryptCost(a.BcryptCost),
			auth.WithLogger(s.logger),
		}
		if s.metrics != nil {
			authOpts = append(authOpts, auth.WithRecorder(s.metrics.Auth))
		}
		s.authService = auth.NewService(s.dataStore, tokens, authOpts...)
	}
	return nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error("Recovered from panic",
				logger.String("path", c.Path()),
				logger.Error(err),
				logger.String("stack", string(stack)))
			return err
		},
	}))

	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.logger.Module("http"), func(c echo.Context) bool {
		return c.Path() == s.config.MetricsPath || c.Path() == "/health"
	}))

	if s.config.MetricsEnabled && s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewGzip(s.config.MetricsPath))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	s.echo.GET("/health", s.healthCheck)

	if s.config.MetricsEnabled && s.metrics != nil {
		s.echo.GET(s.config.MetricsPath, echo.WrapHandler(s.metrics.Handler()))
	}

	opts := []handlers.Option{
		handlers.WithLogger(s.logger.Module("handlers")),
		handlers.WithLoginLimiter(s.loginLimiter()),
	}
	if s.config.RequireAuth {
		var recorder auth.TokenRecorder
		if s.metrics != nil {
			recorder = s.metrics.Auth
		}
		opts = append(opts, handlers.WithAuthMiddleware(auth.RequireToken(s.authService.Tokens(), recorder)))
	}

	controller, err := handlers.New(s.echo, s.dataStore, s.advisory, s.authService, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API handlers: %w", err)
	}
	s.controller = controller
	s.echo.HTTPErrorHandler = controller.HTTPErrorHandler

	s.staticServer = NewStaticFileServer(s.config.StaticDir, s.logger.Module("static"))
	s.staticServer.RegisterRoutes(s.echo)

	return nil
}

func (s *Server) loginLimiter() echo.MiddlewareFunc {
	cfg := auth.RateLimitConfig{
		Rate:  s.settings.Auth.LoginRate,
		Burst: s.settings.Auth.LoginBurst,
	}
	if s.metrics != nil {
		cfg.Recorder = s.metrics.Auth
	}
	return auth.NewLoginRateLimiter(cfg)
}

// healthCheck reports liveness. It answers 200 even when the database is
// down; the database field carries the store state.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	state := DatabaseConnected
	if err := s.dataStore.Ping(ctx); err != nil {
		state = DatabaseUnavailable
		if errors.Is(err, datastore.ErrQueryTimeout) {
			state = DatabaseTimeout
		}
	}

	return c.JSON(http.StatusOK, HealthResponse{
		OK:       true,
		Uptime:   time.Since(s.startTime).Seconds(),
		Database: state,
	})
}

// Start serves HTTP requests and blocks until the server is shut down.
// A clean shutdown returns nil.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.logger.Info("Starting HTTP server", logger.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Serve serves HTTP requests on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.echo.Listener = l
	return s.Start()
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Config returns the effective server configuration.
func (s *Server) Config() *Config {
	return s.config
}
