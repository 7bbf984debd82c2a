package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrConfiguration matches every ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissing indicates a required setting could not be resolved from any source.
	ErrMissing = errors.New("missing value")

	// ErrMalformed indicates a setting was resolved but has an unusable shape.
	ErrMalformed = errors.New("malformed value")
)

// ConfigurationError reports a setting that is missing or malformed.
// The offending value itself is never included, since it may be a secret.
type ConfigurationError struct {
	Err    error  // ErrMissing or ErrMalformed
	Key    string // Setting name, e.g. DATABASE_URL
	Detail string // Optional human-readable explanation
}

func (e *ConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", ErrConfiguration, e.Key, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// Missing returns a ConfigurationError for a setting no source provided.
func Missing(key string) error {
	return &ConfigurationError{Err: ErrMissing, Key: key}
}

// Malformed returns a ConfigurationError for a setting with an unusable value.
func Malformed(key, detail string) error {
	return &ConfigurationError{Err: ErrMalformed, Key: key, Detail: detail}
}
