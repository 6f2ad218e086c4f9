package connection

import (
	"fmt"
	"net/url"
	"strings"
)

// ArangoDBConnection holds the parameters of an ArangoDB deployment.
type ArangoDBConnection struct {
	BaseConnection `mapstructure:",squash"`

	// Endpoints are coordinator URLs, for example http://localhost:8529.
	Endpoints []string `json:"endpoints" mapstructure:"endpoints"`
	Database  string   `json:"database" mapstructure:"database"`
	Username  string   `json:"username" mapstructure:"username"`
	Password  string   `json:"-" mapstructure:"password"`
}

// GetType returns DatabaseTypeArangoDB.
func (c *ArangoDBConnection) GetType() DatabaseType {
	return DatabaseTypeArangoDB
}

// GetDSN lists the endpoints with database and user.
func (c *ArangoDBConnection) GetDSN() string {
	return fmt.Sprintf("endpoints=%s database=%s user=%s", strings.Join(c.Endpoints, ","), c.Database, c.Username)
}

// Redact returns a redacted connection string for display.
func (c *ArangoDBConnection) Redact() string {
	hosts := make([]string, len(c.Endpoints))
	for i, e := range c.Endpoints {
		hosts[i] = e
		if u, err := url.Parse(e); err == nil && u.Host != "" {
			hosts[i] = u.Host
		}
	}
	return fmt.Sprintf("%s (***@%s/%s)", c.Name, strings.Join(hosts, ","), c.Database)
}

// Validate validates the connection parameters.
func (c *ArangoDBConnection) Validate() error {
	var errs []error

	if len(c.Endpoints) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "endpoints",
			Message: "at least one endpoint is required",
		})
	}
	for _, e := range c.Endpoints {
		u, err := url.Parse(e)
		if err != nil || !validScheme(u.Scheme, "http", "https", "tcp", "ssl") || u.Host == "" {
			errs = append(errs, &ValidationError{
				Field:   "endpoints",
				Message: "endpoint must be an http, https, tcp or ssl URL",
				Value:   e,
			})
		}
	}
	if err := ValidateRequired("database", c.Database); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("username", c.Username); err != nil {
		errs = append(errs, err)
	}

	return collect(errs)
}
