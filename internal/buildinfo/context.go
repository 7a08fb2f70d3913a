// Package buildinfo contains build-time metadata kept separate from user configuration
package buildinfo

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Context contains build-time metadata that is not user-configurable.
// It is injected at startup through -ldflags and never read from config.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string

	// InstanceID identifies this process in logs
	InstanceID string
}

// New creates build metadata with a fresh instance id.
func New(version, buildDate string) *Context {
	return &Context{
		Version:    version,
		BuildDate:  buildDate,
		InstanceID: uuid.NewString(),
	}
}

// GetVersion returns the version or UnknownValue.
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns the build date or UnknownValue.
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// GetInstanceID returns the instance id or UnknownValue.
func (c *Context) GetInstanceID() string {
	if c == nil || c.InstanceID == "" {
		return UnknownValue
	}
	return c.InstanceID
}

// Apply copies the build metadata into the runtime fields of settings.
func (c *Context) Apply(s *conf.Settings) {
	if s == nil {
		return
	}
	s.Version = c.GetVersion()
	s.BuildDate = c.GetBuildDate()
}

// String returns a one-line version banner.
func (c *Context) String() string {
	return fmt.Sprintf("cropsevai %s (built %s)", c.GetVersion(), c.GetBuildDate())
}
