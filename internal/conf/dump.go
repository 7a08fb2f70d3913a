package conf

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const maskedValue = "********"

// maskSecret hides all but a short prefix of a secret so operators can tell
// which credential is in use without exposing it.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return maskedValue
	default:
		return s[:2] + maskedValue
	}
}

// Masked returns a copy of the settings with credentials hidden.
func (s *Settings) Masked() Settings {
	c := *s
	c.Datastore.MySQL.Password = maskSecret(c.Datastore.MySQL.Password)
	c.Auth.JWTSecret = maskSecret(c.Auth.JWTSecret)
	c.Sentry.DSN = maskSecret(c.Sentry.DSN)
	c.WebServer.AllowedOrigins = append([]string(nil), s.WebServer.AllowedOrigins...)
	return c
}

// MaskedYAML renders the effective configuration as YAML with secrets masked.
func (s *Settings) MaskedYAML() ([]byte, error) {
	masked := s.Masked()
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings: %w", err)
	}
	return out, nil
}

// DatabaseEnvReport returns the database connection parameters with the
// password reduced to whether it is set. It is logged at startup.
func (s *Settings) DatabaseEnvReport() map[string]string {
	m := s.Datastore.MySQL
	password := "(empty)"
	if m.Password != "" {
		password = "(set)"
	}
	return map[string]string{
		"driver":   s.Datastore.Driver,
		"host":     m.Host,
		"port":     m.Port,
		"user":     m.Username,
		"password": password,
		"database": m.Database,
		"tls":      m.TLS,
	}
}
