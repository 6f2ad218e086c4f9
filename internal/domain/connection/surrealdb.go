package connection

import (
	"fmt"
	"net/url"
)

// SurrealDBConnection holds the parameters of a SurrealDB endpoint.
type SurrealDBConnection struct {
	BaseConnection `mapstructure:",squash"`

	// URL is the RPC endpoint, for example ws://localhost:8000/rpc.
	URL       string `json:"url" mapstructure:"url"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
	Database  string `json:"database" mapstructure:"database"`
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"-" mapstructure:"password"`
}

// GetType returns DatabaseTypeSurrealDB.
func (c *SurrealDBConnection) GetType() DatabaseType {
	return DatabaseTypeSurrealDB
}

// GetDSN returns the endpoint with namespace and database.
func (c *SurrealDBConnection) GetDSN() string {
	return fmt.Sprintf("%s ns=%s db=%s user=%s", c.URL, c.Namespace, c.Database, c.Username)
}

// Redact returns a redacted connection string for display.
func (c *SurrealDBConnection) Redact() string {
	host := c.URL
	if u, err := url.Parse(c.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("%s (***@%s/%s/%s)", c.Name, host, c.Namespace, c.Database)
}

// Validate validates the connection parameters.
func (c *SurrealDBConnection) Validate() error {
	var errs []error

	if err := ValidateRequired("url", c.URL); err != nil {
		errs = append(errs, err)
	} else if u, err := url.Parse(c.URL); err != nil || !validScheme(u.Scheme, "ws", "wss", "http", "https") {
		errs = append(errs, &ValidationError{
			Field:   "url",
			Message: "url must use ws, wss, http or https",
			Value:   c.URL,
		})
	}
	if err := ValidateRequired("namespace", c.Namespace); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("database", c.Database); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("username", c.Username); err != nil {
		errs = append(errs, err)
	}

	return collect(errs)
}

func validScheme(scheme string, allowed ...string) bool {
	for _, a := range allowed {
		if scheme == a {
			return true
		}
	}
	return false
}
