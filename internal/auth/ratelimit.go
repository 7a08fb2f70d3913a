package auth

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// ErrRateLimited is returned when a client exceeds the login rate.
var ErrRateLimited = errors.NewStd("too many login attempts, please try again later")

// RateLimitConfig configures the per-IP login limiter.
type RateLimitConfig struct {
	Rate      float64       // attempts per second; zero or negative disables limiting
	Burst     int           // attempts allowed at once
	ExpiresIn time.Duration // idle visitors are forgotten after this long
	Recorder  LoginRecorder // optional
}

// NewLoginRateLimiter returns middleware limiting login attempts per client IP.
func NewLoginRateLimiter(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Rate <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.Rate),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})

	limited := func() error {
		if cfg.Recorder != nil {
			cfg.Recorder.RecordLogin(metrics.LoginRateLimited, 0)
		}
		return errors.New(ErrRateLimited).
			Component("auth").
			Category(errors.CategoryLimit).
			Build()
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return limited()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return limited()
		},
	})
}
