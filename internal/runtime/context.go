// Package runtime holds the process-wide state shared by CLI subcommands:
// build metadata, loaded settings and the central logger.
package runtime

import (
	"fmt"
	"slices"

	"github.com/spf13/viper"

	"github.com/cropsevai/cropsevai-hub/internal/buildinfo"
	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// Context is created once per process by the root command and handed to
// every subcommand.
type Context struct {
	Build    *buildinfo.Context
	Settings *conf.Settings
	Logger   logger.Logger

	central *logger.CentralLogger
}

// New returns a Context that has not loaded any configuration yet.
func New(build *buildinfo.Context) *Context {
	if build == nil {
		build = buildinfo.New("", "")
	}
	return &Context{
		Build:  build,
		Logger: logger.NewDiscardLogger(),
	}
}

// Load reads settings and starts logging. configFile may be empty to use
// the default search path.
func (c *Context) Load(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	c.Build.Apply(settings)

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	c.Settings = settings
	c.central = central
	c.Logger = central.Logger()
	logger.SetGlobal(c.Logger)

	log := c.Logger.Module("main")
	configUsed := settings.ConfigFile
	if configUsed == "" {
		configUsed = "(defaults and environment)"
	}
	log.Info("Configuration loaded",
		logger.String("version", c.Build.GetVersion()),
		logger.String("build_date", c.Build.GetBuildDate()),
		logger.String("instance_id", c.Build.GetInstanceID()),
		logger.String("config_file", configUsed),
		logger.String("datastore_driver", settings.Datastore.Driver))

	result := c.Check()
	for _, w := range result.Warnings {
		log.Warn(w)
	}
	return nil
}

// Check reports settings that are valid but worth an operator's attention.
func (c *Context) Check() *ValidationResult {
	result := NewValidationResult()
	if c.Settings == nil {
		result.AddError("settings not loaded")
		return result
	}
	s := c.Settings

	if viper.GetString("auth.jwtsecret") == "" {
		result.AddWarning("auth.jwtsecret is not set; using a random secret, tokens will not survive a restart")
	}
	if s.Security.RequireAuth && slices.Contains(s.WebServer.AllowedOrigins, "*") {
		result.AddWarning("security.requireauth is enabled while CORS allows any origin")
	}
	if s.Datastore.Driver == conf.DriverMySQL && s.Datastore.MySQL.Password == "" {
		result.AddWarning("datastore.mysql.password is empty")
	}
	if s.Datastore.Driver == conf.DriverMySQL && s.Datastore.MySQL.TLS == "false" {
		result.AddWarning("MySQL connection is not encrypted (datastore.mysql.tls=false)")
	}
	return result
}

// OpenDatastore creates the configured store and opens its connection pool.
// Open does not ping; callers decide how to treat an unreachable database.
func (c *Context) OpenDatastore(m *metrics.DatastoreMetrics) (datastore.Interface, error) {
	if c.Settings == nil {
		return nil, fmt.Errorf("settings not loaded")
	}
	ds, err := datastore.New(c.Settings, c.Logger, m)
	if err != nil {
		return nil, err
	}
	if err := ds.Open(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Close flushes and closes log outputs.
func (c *Context) Close() error {
	if c.central == nil {
		return nil
	}
	return c.central.Close()
}
