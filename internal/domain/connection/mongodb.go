package connection

import (
	"fmt"
	"net/url"
)

// MongoDBConnection holds the parameters of a MongoDB deployment.
// Transactions need a replica set, so ReplicaSet is usually set.
type MongoDBConnection struct {
	BaseConnection `mapstructure:",squash"`

	Host       string `json:"host" mapstructure:"host"`
	Port       int    `json:"port" mapstructure:"port"`
	Database   string `json:"database" mapstructure:"database"`
	Username   string `json:"username" mapstructure:"username"`
	Password   string `json:"-" mapstructure:"password"`
	AuthSource string `json:"auth_source" mapstructure:"auth_source"`
	ReplicaSet string `json:"replica_set" mapstructure:"replica_set"`
}

// GetType returns DatabaseTypeMongoDB.
func (c *MongoDBConnection) GetType() DatabaseType {
	return DatabaseTypeMongoDB
}

// GetDSN generates a connection URI without password (for logging).
func (c *MongoDBConnection) GetDSN() string {
	return c.uri(false)
}

// GetDSNWithPassword generates the connection URI used to connect.
func (c *MongoDBConnection) GetDSNWithPassword() string {
	return c.uri(true)
}

func (c *MongoDBConnection) uri(withPassword bool) string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}
	if c.Username != "" {
		if withPassword {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	q := url.Values{}
	if c.AuthSource != "" {
		q.Set("authSource", c.AuthSource)
	}
	if c.ReplicaSet != "" {
		q.Set("replicaSet", c.ReplicaSet)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redact returns a redacted connection string for display.
func (c *MongoDBConnection) Redact() string {
	return fmt.Sprintf("%s (***@%s:%d/%s)", c.Name, c.Host, c.Port, c.Database)
}

// Validate validates the connection parameters.
func (c *MongoDBConnection) Validate() error {
	var errs []error

	if err := ValidateRequired("host", c.Host); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRequired("database", c.Database); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePort(c.Port); err != nil {
		errs = append(errs, err)
	}
	if c.Password != "" && c.Username == "" {
		errs = append(errs, &ValidationError{
			Field:   "username",
			Message: "username is required when password is set",
		})
	}

	return collect(errs)
}
