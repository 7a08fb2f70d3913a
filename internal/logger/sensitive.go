// sensitive.go
package logger

import (
	"regexp"
	"strings"
)

// SensitiveDataPatterns contains regex patterns for sensitive data that should be redacted in logs
var SensitiveDataPatterns = []*regexp.Regexp{
	// Auth tokens (Bearer, JWT, etc.)
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),
	regexp.MustCompile(`(eyJ[a-zA-Z0-9_-]{5,}\.eyJ[a-zA-Z0-9_-]{5,})\.[a-zA-Z0-9_-]{5,}`),

	// Secrets in key=value form
	regexp.MustCompile(`(?i)((token|secret|passw(or)?d)[0-9a-z\-_\.]*[\s:=]+)([^;,\s&]{3,})`),
}

// SensitiveKeywords are keywords that indicate fields may contain sensitive data
var SensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "authorization", "dsn",
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range SensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "$1[REDACTED]")
	}
	return input
}

// RedactSensitiveFields returns a copy of fields with sensitive string values
// replaced, judged by key name.
func RedactSensitiveFields(fields []Field) []Field {
	result := make([]Field, len(fields))
	copy(result, fields)

	for i, f := range result {
		keyLower := strings.ToLower(f.Key)
		for _, sensitiveKey := range SensitiveKeywords {
			if strings.Contains(keyLower, sensitiveKey) {
				if value, ok := f.Value.(string); ok && value != "" {
					result[i].Value = "[REDACTED]"
				}
				break
			}
		}
	}

	return result
}
