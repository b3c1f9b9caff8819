package config

import (
	"fmt"
	"strings"
)

// ValidationErrors is a custom error type that holds a slice of validation errors (allows for 1+)
type ValidationErrors []error

// Error implements the error interface for ValidationErrors.
// It joins all the underlying errors into a single string.
func (v ValidationErrors) Error() string {
	var b strings.Builder

	b.WriteString("validation failed with the following errors:\n")
	for _, err := range v {
		b.WriteString(fmt.Sprintf("- %s\n", err))
	}
	return b.String()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var validateErrs ValidationErrors

	if c.Backend != "standard" && c.Backend != "doh" {
		validateErrs = append(validateErrs, fmt.Errorf("backend must be either standard or doh, got %q", c.Backend))
	}

	if c.QueryTimeout < 0 {
		validateErrs = append(validateErrs, fmt.Errorf("query timeout cannot be negative"))
	}

	if c.Workers < 1 {
		validateErrs = append(validateErrs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	if c.Propagation.Interval <= 0 {
		validateErrs = append(validateErrs, fmt.Errorf("propagation interval must be positive"))
	}

	if c.Propagation.MaxDuration < 0 {
		validateErrs = append(validateErrs, fmt.Errorf("propagation max duration cannot be negative"))
	}

	if len(c.Propagation.Resolvers) == 0 {
		validateErrs = append(validateErrs, fmt.Errorf("at least one propagation resolver is required"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		validateErrs = append(validateErrs, fmt.Errorf("invalid logging level: %s", c.Logging.Level))
	}

	switch strings.ToLower(c.Report.Format) {
	case "table", "csv", "json", "html":
	default:
		validateErrs = append(validateErrs, fmt.Errorf("invalid report format: %s", c.Report.Format))
	}

	if len(validateErrs) > 0 {
		return validateErrs
	}

	return nil
}
