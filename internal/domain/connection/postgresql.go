package connection

import (
	"fmt"
	"net/url"
)

// PostgreSQLConnection holds the parameters of the PostgreSQL JSONB baseline.
type PostgreSQLConnection struct {
	BaseConnection `mapstructure:",squash"`

	Host     string `json:"host" mapstructure:"host"`         // Host address
	Port     int    `json:"port" mapstructure:"port"`         // Port (default 5432)
	Database string `json:"database" mapstructure:"database"` // Database name
	Username string `json:"username" mapstructure:"username"` // Username
	Password string `json:"-" mapstructure:"password"`        // Password (env only)
	SSLMode  string `json:"ssl_mode" mapstructure:"ssl_mode"` // disable/allow/prefer/require/verify-ca/verify-full
}

// GetType returns DatabaseTypePostgreSQL.
func (c *PostgreSQLConnection) GetType() DatabaseType {
	return DatabaseTypePostgreSQL
}

// GetDSN generates a connection string without password (for logging).
// Format: host=host port=port database=database user=username
func (c *PostgreSQLConnection) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d database=%s user=%s", c.Host, c.Port, c.Database, c.Username)
}

// GetDSNWithPassword generates a complete connection URL with password.
func (c *PostgreSQLConnection) GetDSNWithPassword() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Redact returns a redacted connection string for display.
func (c *PostgreSQLConnection) Redact() string {
	return fmt.Sprintf("%s (***@%s:%d/%s)", c.Name, c.Host, c.Port, c.Database)
}

// Validate validates the connection parameters.
func (c *PostgreSQLConnection) Validate() error {
	var errs []error

	if err := ValidateRequired("host", c.Host); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("database", c.Database); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("username", c.Username); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePort(c.Port); err != nil {
		errs = append(errs, err)
	}

	validSSLMode := map[string]bool{
		"disable":     true,
		"allow":       true,
		"prefer":      true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if c.SSLMode != "" && !validSSLMode[c.SSLMode] {
		errs = append(errs, &ValidationError{
			Field:   "ssl_mode",
			Message: "ssl_mode must be one of: disable, allow, prefer, require, verify-ca, verify-full",
			Value:   c.SSLMode,
		})
	}

	return collect(errs)
}
