// conf/validate.go

package conf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

var validTLSModes = []string{"false", "true", "skip-verify", "preferred"}

func isValidTLSMode(mode string) bool {
	for _, m := range validTLSModes {
		if mode == m {
			return true
		}
	}
	return false
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		validateWebServerSettings,
		validateDatastoreSettings,
		validateAuthSettings,
		validateMetricsSettings,
		validateSentrySettings,
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(s *Settings) []string {
	var errs []string
	ws := &s.WebServer

	if port, err := strconv.Atoi(ws.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("WebServer port must be between 1 and 65535, got %q", ws.Port))
	}

	if ws.BodyLimit != "" {
		if _, err := bytes.Parse(ws.BodyLimit); err != nil {
			errs = append(errs, fmt.Sprintf("WebServer body limit %q is not a valid size", ws.BodyLimit))
		}
	}

	if ws.ReadTimeout < 0 || ws.WriteTimeout < 0 || ws.ShutdownTimeout < 0 {
		errs = append(errs, "WebServer timeouts must not be negative")
	}

	return errs
}

func validateDatastoreSettings(s *Settings) []string {
	var errs []string
	ds := &s.Datastore

	switch ds.Driver {
	case DriverMySQL:
		if ds.MySQL.Host == "" {
			errs = append(errs, "MySQL host must not be empty")
		}
		if ds.MySQL.Database == "" {
			errs = append(errs, "MySQL database name must not be empty")
		}
		if port, err := strconv.Atoi(ds.MySQL.Port); err != nil || port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("MySQL port must be between 1 and 65535, got %q", ds.MySQL.Port))
		}
		if !isValidTLSMode(ds.MySQL.TLS) {
			errs = append(errs, fmt.Sprintf("MySQL tls must be one of %s", strings.Join(validTLSModes, ", ")))
		}
		if ds.MySQL.MaxOpenConns < 1 {
			errs = append(errs, "MySQL max open connections must be at least 1")
		}
		if ds.MySQL.MaxIdleConns < 0 || ds.MySQL.MaxIdleConns > ds.MySQL.MaxOpenConns {
			errs = append(errs, "MySQL max idle connections must be between 0 and max open connections")
		}
	case DriverSQLite:
		if ds.SQLite.Path == "" {
			errs = append(errs, "SQLite path must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("Datastore driver must be %q or %q, got %q", DriverMySQL, DriverSQLite, ds.Driver))
	}

	if ds.QueryTimeout <= 0 {
		errs = append(errs, "Datastore query timeout must be positive")
	}

	return errs
}

func validateAuthSettings(s *Settings) []string {
	var errs []string
	a := &s.Auth

	if a.TokenExpiry <= 0 {
		errs = append(errs, "Auth token expiry must be positive")
	}
	// bcrypt accepts costs from 4 to 31
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		errs = append(errs, fmt.Sprintf("Auth bcrypt cost must be between 4 and 31, got %d", a.BcryptCost))
	}
	if a.LoginRate < 0 {
		errs = append(errs, "Auth login rate must not be negative")
	}
	if a.LoginRate > 0 && a.LoginBurst < 1 {
		errs = append(errs, "Auth login burst must be at least 1 when rate limiting is enabled")
	}
	if s.Cache.DashboardTTL < 0 {
		errs = append(errs, "Cache dashboard TTL must not be negative")
	}

	return errs
}

func validateMetricsSettings(s *Settings) []string {
	if s.Metrics.Enabled && !strings.HasPrefix(s.Metrics.Path, "/") {
		return []string{fmt.Sprintf("Metrics path must start with '/', got %q", s.Metrics.Path)}
	}
	return nil
}

func validateSentrySettings(s *Settings) []string {
	var errs []string
	if s.Sentry.Enabled && s.Sentry.DSN == "" {
		errs = append(errs, "Sentry DSN must be set when Sentry is enabled")
	}
	if s.Sentry.SampleRate < 0 || s.Sentry.SampleRate > 1 {
		errs = append(errs, "Sentry sample rate must be between 0 and 1")
	}
	return errs
}
