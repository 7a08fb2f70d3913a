// defaults.go default values for every configuration key
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// setDefaultConfig sets the default configuration values.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Web server
	viper.SetDefault("webserver.port", "5000")
	viper.SetDefault("webserver.staticdir", "frontend")
	viper.SetDefault("webserver.allowedorigins", []string{"*"})
	viper.SetDefault("webserver.bodylimit", "1M")
	viper.SetDefault("webserver.readtimeout", 30*time.Second)
	viper.SetDefault("webserver.writetimeout", 30*time.Second)
	viper.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	viper.SetDefault("webserver.debug", false)

	// Datastore
	viper.SetDefault("datastore.driver", DriverMySQL)
	viper.SetDefault("datastore.querytimeout", 5*time.Second)
	viper.SetDefault("datastore.slowquerythreshold", 200*time.Millisecond)
	viper.SetDefault("datastore.automigrate", false)

	viper.SetDefault("datastore.sqlite.path", "cropsevai.db")

	viper.SetDefault("datastore.mysql.host", "localhost")
	viper.SetDefault("datastore.mysql.port", "3306")
	viper.SetDefault("datastore.mysql.username", "root")
	viper.SetDefault("datastore.mysql.password", "")
	viper.SetDefault("datastore.mysql.database", "cropsevaihub")
	viper.SetDefault("datastore.mysql.tls", "skip-verify")
	viper.SetDefault("datastore.mysql.maxopenconns", 10)
	viper.SetDefault("datastore.mysql.maxidleconns", 5)
	viper.SetDefault("datastore.mysql.connmaxlifetime", 30*time.Minute)
	viper.SetDefault("datastore.mysql.connecttimeout", 10*time.Second)

	// Auth
	viper.SetDefault("auth.jwtsecret", "")
	viper.SetDefault("auth.tokenexpiry", 24*time.Hour)
	viper.SetDefault("auth.issuer", "cropsevai-hub")
	viper.SetDefault("auth.autoprovision", true)
	viper.SetDefault("auth.bcryptcost", 10)
	viper.SetDefault("auth.loginrate", 1.0)
	viper.SetDefault("auth.loginburst", 5)

	viper.SetDefault("security.requireauth", false)

	viper.SetDefault("cache.dashboardttl", time.Duration(0))

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")
	viper.SetDefault("sentry.samplerate", 1.0)

	// Logging
	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.json", false)
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.max_size", logger.DefaultMaxSize)
	viper.SetDefault("logging.file_output.max_age", logger.DefaultMaxAge)
	viper.SetDefault("logging.file_output.max_rotated_files", logger.DefaultMaxRotatedFiles)
	viper.SetDefault("logging.file_output.compress", true)
	viper.SetDefault("logging.module_levels", map[string]string{})
}
