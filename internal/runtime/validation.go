package runtime

// ValidationResult holds startup check outcomes separately from configuration.
type ValidationResult struct {
	// Warnings are configuration issues that don't prevent startup
	Warnings []string

	// Errors are critical issues that should prevent startup
	Errors []string

	// Valid indicates if the configuration passed validation
	Valid bool
}

// AddWarning adds a warning to the validation result
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// AddError adds an error to the validation result
func (r *ValidationResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Valid = false
}

// HasIssues returns true if there are any warnings or errors
func (r *ValidationResult) HasIssues() bool {
	return len(r.Warnings) > 0 || len(r.Errors) > 0
}

// NewValidationResult creates a new validation result with Valid set to true
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid: true,
	}
}
