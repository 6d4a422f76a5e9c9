package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks field values that viper cannot type-check.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.AnswersFile != "" {
		if strings.TrimSpace(c.AnswersFile) == "" {
			errs = append(errs, ValidationError{
				Field:   "answersFile",
				Message: "must not be empty or whitespace only",
			})
		} else if filepath.Ext(c.AnswersFile) != ".json" {
			errs = append(errs, ValidationError{
				Field:   "answersFile",
				Message: "must be a .json file",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
