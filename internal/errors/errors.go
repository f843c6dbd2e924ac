package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// VaultSuggestion returns a helpful suggestion based on a Vault transport error.
func VaultSuggestion(address string, err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Check that Vault server is running and accessible at " + address
	case strings.Contains(errStr, "permission denied"):
		return "Check your Vault token permissions for this path"
	case strings.Contains(errStr, "invalid token"):
		return "Your Vault token may be expired or invalid. Run 'template-vault login' to refresh"
	case strings.Contains(errStr, "tls"):
		return "Check TLS configuration or set tls_skip: true for testing"
	case strings.Contains(errStr, "auth"):
		return "Authentication failed. Check your credentials and auth method configuration"
	default:
		return "Check your Vault configuration and connectivity"
	}
}
