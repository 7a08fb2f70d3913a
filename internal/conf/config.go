// config.go: settings struct for CropSevai Hub and the functions that load it
// from config.yaml, environment variables and command line flags.
package conf

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Supported datastore drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Settings holds the complete application configuration.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version    string `yaml:"-" mapstructure:"-"` // Version from build
	BuildDate  string `yaml:"-" mapstructure:"-"` // Build date from build
	ConfigFile string `yaml:"-" mapstructure:"-"` // config file actually read, empty when running on defaults

	WebServer WebServerSettings // HTTP server
	Datastore DatastoreSettings // relational store
	Auth      AuthSettings      // login and token issuance
	Security  SecuritySettings  // access control for /api
	Cache     CacheSettings     // response caching
	Metrics   MetricsSettings   // Prometheus endpoint
	Sentry    SentrySettings    // opt-in error telemetry

	Logging logger.LoggingConfig // logging outputs and levels
}

// WebServerSettings contains HTTP server settings
type WebServerSettings struct {
	Port            string        // port to listen on
	StaticDir       string        // directory of the companion front end, empty disables static hosting
	AllowedOrigins  []string      // CORS allowed origins
	BodyLimit       string        // maximum request body size, e.g. "1M"
	ReadTimeout     time.Duration // maximum duration for reading a request
	WriteTimeout    time.Duration // maximum duration for writing a response
	ShutdownTimeout time.Duration // grace period for in-flight requests on shutdown
	Debug           bool          // verbose echo logging
}

// DatastoreSettings selects and tunes the relational store
type DatastoreSettings struct {
	Driver             string        // "mysql" or "sqlite"
	QueryTimeout       time.Duration // per-query deadline
	SlowQueryThreshold time.Duration // queries slower than this are logged at WARN
	AutoMigrate        bool          // run schema migration on startup

	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// SQLiteSettings configures the embedded SQLite database
type SQLiteSettings struct {
	Path string // path to sqlite database file
}

// MySQLSettings configures the MySQL connection pool
type MySQLSettings struct {
	Host            string        // host for mysql database
	Port            string        // port for mysql database
	Username        string        // username for mysql database
	Password        string        // password for mysql database
	Database        string        // database name
	TLS             string        // "false", "true", "skip-verify" or "preferred"
	MaxOpenConns    int           // pool size
	MaxIdleConns    int           // idle connections kept in the pool
	ConnMaxLifetime time.Duration // recycle connections after this long
	ConnectTimeout  time.Duration // dial timeout
}

// AuthSettings configures login and JWT issuance
type AuthSettings struct {
	JWTSecret     string        // HMAC signing secret
	TokenExpiry   time.Duration // lifetime of issued tokens
	Issuer        string        // iss claim
	AutoProvision bool          // create unknown users on first login
	BcryptCost    int           // bcrypt work factor
	LoginRate     float64       // login attempts per second per client IP
	LoginBurst    int           // burst size for the login limiter
}

// SecuritySettings controls access to the query endpoints
type SecuritySettings struct {
	RequireAuth bool // require a bearer token on /api/*
}

// CacheSettings configures response caching
type CacheSettings struct {
	DashboardTTL time.Duration // 0 disables the dashboard cache
}

// MetricsSettings configures the Prometheus endpoint
type MetricsSettings struct {
	Enabled bool   // expose metrics
	Path    string // HTTP path of the metrics endpoint
}

// SentrySettings configures opt-in error telemetry
type SentrySettings struct {
	Enabled     bool    // true to enable Sentry error tracking
	DSN         string  // Sentry project DSN
	Environment string  // environment tag
	SampleRate  float64 // share of errors sent, 0 to 1
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
// configFile overrides the search path when not empty.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.ConfigFile = viper.ConfigFileUsed()

	// A missing secret would make every issued token forgeable with an
	// empty key; generate one for this process instead.
	if settings.Auth.JWTSecret == "" {
		settings.Auth.JWTSecret = GenerateRandomSecret()
	}

	if settings.Debug {
		settings.WebServer.Debug = true
		if settings.Logging.DefaultLevel == "" || settings.Logging.DefaultLevel == logger.DefaultLogLevel {
			settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		}
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, path := range GetDefaultConfigPaths() {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && configFile == "" {
			// No config file: run on defaults and environment only
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "cropsevai"))
	}
	return append(paths, "/etc/cropsevai")
}

// DefaultConfigYAML returns the embedded default config.yaml.
func DefaultConfigYAML() ([]byte, error) {
	return fs.ReadFile(configFiles, "config.yaml")
}

// WriteDefaultConfig writes the embedded default configuration to path,
// refusing to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := DefaultConfigYAML()
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return nil
}

// GetSettings returns the settings loaded by the last successful Load call.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GenerateRandomSecret generates a URL-safe base64 encoded random string
// suitable for use as a signing secret.
func GenerateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("failed to generate random secret: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
