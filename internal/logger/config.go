package logger

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	DefaultLevel string            `yaml:"default_level" mapstructure:"default_level"` // default log level for all modules
	Console      ConsoleOutput     `yaml:"console" mapstructure:"console"`             // console output configuration
	FileOutput   FileOutput        `yaml:"file_output" mapstructure:"file_output"`     // file output configuration
	ModuleLevels map[string]string `yaml:"module_levels" mapstructure:"module_levels"` // per-module log levels
}

// ConsoleOutput represents console logging configuration.
type ConsoleOutput struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"` // enable console output
	JSON    bool `yaml:"json" mapstructure:"json"`       // JSON instead of console encoding
}

// FileOutput represents file logging configuration.
// File output is always JSON for log aggregation systems.
type FileOutput struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`                     // enable file output
	Path            string `yaml:"path" mapstructure:"path"`                           // log file path
	MaxSize         int    `yaml:"max_size" mapstructure:"max_size"`                   // maximum size in MB before rotation
	MaxAge          int    `yaml:"max_age" mapstructure:"max_age"`                     // maximum age in days to keep rotated logs (0 = no limit)
	MaxRotatedFiles int    `yaml:"max_rotated_files" mapstructure:"max_rotated_files"` // maximum number of rotated log files to keep (0 = no limit)
	Compress        bool   `yaml:"compress" mapstructure:"compress"`                   // compress rotated logs with gzip
}

// Default values for logging configuration.
// These match the defaults in conf/defaults.go.
const (
	DefaultLogLevel        = "info"
	DefaultLogPath         = "logs/cropsevai.log"
	DefaultMaxSize         = 100 // MB before rotation
	DefaultMaxAge          = 30  // days to keep rotated files
	DefaultMaxRotatedFiles = 10
)

// DefaultLoggingConfig returns console-only logging at info level.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		DefaultLevel: DefaultLogLevel,
		Console:      ConsoleOutput{Enabled: true},
		FileOutput: FileOutput{
			Path:            DefaultLogPath,
			MaxSize:         DefaultMaxSize,
			MaxAge:          DefaultMaxAge,
			MaxRotatedFiles: DefaultMaxRotatedFiles,
		},
		ModuleLevels: map[string]string{},
	}
}

// levelFor returns the configured level for a module. Nested modules
// ("api.http") fall back to their parent ("api") and then to the default.
func (c *LoggingConfig) levelFor(module string) LogLevel {
	for name := module; name != ""; name = parentModule(name) {
		if lvl, ok := c.ModuleLevels[name]; ok {
			return ParseLevel(lvl)
		}
	}
	return ParseLevel(c.DefaultLevel)
}

func parentModule(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}
