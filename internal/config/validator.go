// Package config provides configuration management for the alert monitor.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "stream.url")
	Tag     string      // Validation tag that failed (e.g., "required", "url")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	validationErrors = append(validationErrors, validateStream(cfg)...)
	validationErrors = append(validationErrors, validateSession(cfg)...)
	validationErrors = append(validationErrors, validateTimezoneConfig(cfg)...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateStream checks transport-dependent rules.
func validateStream(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Stream.ReconnectDelay <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "stream.reconnect_delay",
			Tag:     "positive",
			Value:   cfg.Stream.ReconnectDelay,
			Message: "reconnect delay must be greater than zero",
		})
	}

	scheme := strings.ToLower(strings.SplitN(cfg.Stream.URL, "://", 2)[0])
	switch cfg.Stream.Transport {
	case TransportWebSocket:
		if scheme != "ws" && scheme != "wss" {
			errors = append(errors, &ValidationError{
				Field:   "stream.url",
				Tag:     "scheme",
				Value:   cfg.Stream.URL,
				Message: "websocket transport requires a ws:// or wss:// URL",
			})
		}
	case TransportSSE:
		if scheme != "http" && scheme != "https" {
			errors = append(errors, &ValidationError{
				Field:   "stream.url",
				Tag:     "scheme",
				Value:   cfg.Stream.URL,
				Message: "sse transport requires an http:// or https:// URL",
			})
		}
	}

	// The SSE transport is receive-only, so resolve frames cannot be sent over it
	if cfg.Mutation.Channel == ChannelStream && cfg.Stream.Transport != TransportWebSocket {
		errors = append(errors, &ValidationError{
			Field:   "mutation.channel",
			Tag:     "transport",
			Value:   cfg.Mutation.Channel,
			Message: "stream mutation channel requires the websocket transport",
		})
	}

	return errors
}

// validateSession checks session timing rules.
func validateSession(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Session.RefreshInterval < 0 {
		errors = append(errors, &ValidationError{
			Field:   "session.refresh_interval",
			Tag:     "gte",
			Value:   cfg.Session.RefreshInterval,
			Message: "refresh interval must not be negative (0 disables refresh)",
		})
	}

	if cfg.API.Timeout < 0 {
		errors = append(errors, &ValidationError{
			Field:   "api.timeout",
			Tag:     "gte",
			Value:   cfg.API.Timeout,
			Message: "timeout must not be negative (0 means no timeout)",
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Stream.URL" -> "stream.url"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
