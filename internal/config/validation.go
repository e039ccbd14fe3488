package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ValidationError describes one rejected configuration value.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
}

// Validator accumulates validation errors for a set of fields.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) AddError(field, value, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ValidatePort parses a TCP port number. ":8081" is accepted.
func (v *Validator) ValidatePort(key, value string) (int, bool) {
	portStr := strings.TrimPrefix(strings.TrimSpace(value), ":")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(key, value, "port must be a number")
		return 0, false
	}

	if port < 1 || port > 65535 {
		v.AddError(key, value, "port must be between 1 and 65535")
		return 0, false
	}
	return port, true
}

// ValidateEnum checks that value is one of allowed.
func (v *Validator) ValidateEnum(key, value string, allowed []string) bool {
	for _, opt := range allowed {
		if value == opt {
			return true
		}
	}

	v.AddError(key, value, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return false
}

// ValidateHostPort checks a listen address such as "127.0.0.1:9090" or ":9090".
func (v *Validator) ValidateHostPort(key, value string) bool {
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		v.AddError(key, value, fmt.Sprintf("invalid listen address: %v", err))
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		v.AddError(key, value, "port must be between 0 and 65535")
		return false
	}
	return true
}
