// Package connection provides the connection parameters of every benchmarked
// backend.
package connection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned for backend names outside DatabaseTypes.
var ErrUnknownBackend = errors.New("unknown backend")

// DatabaseType represents the type of database.
type DatabaseType string

const (
	DatabaseTypeSurrealDB  DatabaseType = "surrealdb"
	DatabaseTypeMongoDB    DatabaseType = "mongodb"
	DatabaseTypeArangoDB   DatabaseType = "arangodb"
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	// DatabaseTypeDry executes nothing; it measures harness overhead.
	DatabaseTypeDry DatabaseType = "dry"
)

// DatabaseTypes lists every supported backend.
var DatabaseTypes = []DatabaseType{
	DatabaseTypeSurrealDB,
	DatabaseTypeMongoDB,
	DatabaseTypeArangoDB,
	DatabaseTypePostgreSQL,
	DatabaseTypeDry,
}

// String returns the backend name.
func (t DatabaseType) String() string {
	return string(t)
}

// DisplayName returns the name used in report headings.
func (t DatabaseType) DisplayName() string {
	switch t {
	case DatabaseTypeSurrealDB:
		return "SurrealDB"
	case DatabaseTypeMongoDB:
		return "MongoDB"
	case DatabaseTypeArangoDB:
		return "ArangoDB"
	case DatabaseTypePostgreSQL:
		return "PostgreSQL"
	default:
		return string(t)
	}
}

// ParseDatabaseType parses a backend name, ignoring case.
func ParseDatabaseType(s string) (DatabaseType, error) {
	t := DatabaseType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DatabaseTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Connection is implemented by the parameters of every networked backend.
type Connection interface {
	// GetName returns the connection name.
	GetName() string

	// GetType returns the database type.
	GetType() DatabaseType

	// Validate validates the connection parameters.
	// Returns an error if any required field is missing or invalid.
	Validate() error

	// GetDSN generates a connection string without password (for logging).
	GetDSN() string

	// Redact returns a redacted connection string for display.
	// Format: "name (***@host:port/db)" or similar.
	Redact() string
}

// TestResult represents the result of a connection test.
type TestResult struct {
	Success         bool   `json:"success"`          // Whether the test succeeded
	LatencyMs       int64  `json:"latency_ms"`       // Connection latency in milliseconds
	DatabaseVersion string `json:"database_version"` // Database version information
	Error           string `json:"error,omitempty"`  // Error message if failed
}

// ValidatePort validates that a port number is in valid range (1-65535).
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{
			Field:   "port",
			Message: "port must be between 1 and 65535",
			Value:   port,
		}
	}
	return nil
}

// ValidateRequired validates that a required string field is not empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
		}
	}
	return nil
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Value)
	}
	return e.Message
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []error
}

func (e *MultiValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *MultiValidationError) Unwrap() []error {
	return e.Errors
}

func collect(errs []error) error {
	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

// BaseConnection contains common fields for all connection types.
type BaseConnection struct {
	Name string `json:"name" mapstructure:"name"`
}

// GetName returns the connection name.
func (b *BaseConnection) GetName() string {
	return b.Name
}

// SetName sets the connection name.
func (b *BaseConnection) SetName(name string) {
	b.Name = name
}
