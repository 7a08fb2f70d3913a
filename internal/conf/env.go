// env.go - Environment variable configuration and validation for CropSevai Hub
package conf

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
// Names follow the .env files the service has always been deployed with.
func getEnvBindings() []envBinding {
	return []envBinding{
		// Database
		{"datastore.driver", "DB_DRIVER", validateEnvDriver},
		{"datastore.mysql.host", "DB_HOST", validateEnvHost},
		{"datastore.mysql.port", "DB_PORT", validateEnvPort},
		{"datastore.mysql.username", "DB_USER", nil},
		{"datastore.mysql.password", "DB_PASSWORD", nil},
		{"datastore.mysql.database", "DB_NAME", validateEnvDatabaseName},
		{"datastore.mysql.tls", "DB_TLS", validateEnvTLSMode},
		{"datastore.sqlite.path", "DB_PATH", nil},

		// Auth
		{"auth.jwtsecret", "JWT_SECRET", nil},
		{"security.requireauth", "REQUIRE_AUTH", validateEnvBool},

		// Web server
		{"webserver.port", "PORT", validateEnvPort},

		// Telemetry and logging
		{"sentry.dsn", "SENTRY_DSN", nil},
		{"logging.default_level", "LOG_LEVEL", validateEnvLogLevel},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	// A DSN in the environment opts in to telemetry without a config edit.
	if os.Getenv("SENTRY_DSN") != "" {
		viper.SetDefault("sentry.enabled", true)
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvHost(value string) error {
	if strings.ContainsAny(value, " /") {
		return fmt.Errorf("host must be a hostname or IP address, got '%s'", value)
	}
	if _, _, err := net.SplitHostPort(value); err == nil {
		return fmt.Errorf("host must not include a port, use DB_PORT instead")
	}
	return nil
}

func validateEnvDatabaseName(value string) error {
	if len(value) > 64 {
		return fmt.Errorf("database name must be at most 64 characters, got %d", len(value))
	}
	if strings.ContainsAny(value, "/\\. ") {
		return fmt.Errorf("database name contains invalid characters: '%s'", value)
	}
	return nil
}

func validateEnvDriver(value string) error {
	switch value {
	case DriverMySQL, DriverSQLite:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s", DriverMySQL, DriverSQLite)
}

func validateEnvTLSMode(value string) error {
	if isValidTLSMode(value) {
		return nil
	}
	return fmt.Errorf("must be one of: %s", strings.Join(validTLSModes, ", "))
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("must be one of: trace, debug, info, warn, error")
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	// CROPSEVAI_WEBSERVER_PORT style overrides for every key
	viper.SetEnvPrefix("CROPSEVAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindEnvVars()
}
