// Package config provides the benchmark configuration passed explicitly to
// every use case.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
)

var (
	// ErrInvalidConfiguration is returned when configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CurrentVersion is the only configuration version understood.
const CurrentVersion = 1

// SessionConfig controls how a benchmark session executes.
type SessionConfig struct {
	// Runs is the number of full catalogue executions per session.
	Runs int `json:"runs" mapstructure:"runs"`

	// Iterations is the number of timed executions of each operation per run.
	Iterations int `json:"iterations" mapstructure:"iterations"`

	// Seed drives dataset generation. Every run of a session uses it.
	Seed uint64 `json:"seed" mapstructure:"seed"`

	// OutputDir receives <backend>_bench_output.json.
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("%w: runs must be at least 1", ErrInvalidConfiguration)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalidConfiguration)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfiguration)
	}
	return nil
}

// ResultPath returns the result file path of a backend.
func (c *SessionConfig) ResultPath(backend connection.DatabaseType) string {
	return filepath.Join(c.OutputDir, backend.String()+"_bench_output.json")
}

// BackendsConfig holds the connection parameters of every backend.
type BackendsConfig struct {
	SurrealDB  connection.SurrealDBConnection  `json:"surrealdb" mapstructure:"surrealdb"`
	MongoDB    connection.MongoDBConnection    `json:"mongodb" mapstructure:"mongodb"`
	ArangoDB   connection.ArangoDBConnection   `json:"arangodb" mapstructure:"arangodb"`
	PostgreSQL connection.PostgreSQLConnection `json:"postgresql" mapstructure:"postgresql"`
}

// Get returns the connection parameters of a backend. The dry backend
// has none and returns nil.
func (c *BackendsConfig) Get(t connection.DatabaseType) (connection.Connection, error) {
	switch t {
	case connection.DatabaseTypeSurrealDB:
		return &c.SurrealDB, nil
	case connection.DatabaseTypeMongoDB:
		return &c.MongoDB, nil
	case connection.DatabaseTypeArangoDB:
		return &c.ArangoDB, nil
	case connection.DatabaseTypePostgreSQL:
		return &c.PostgreSQL, nil
	case connection.DatabaseTypeDry:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", connection.ErrUnknownBackend, t)
	}
}

// Validate validates the parameters of one backend. The others may be
// left unconfigured.
func (c *BackendsConfig) Validate(t connection.DatabaseType) error {
	conn, err := c.Get(t)
	if err != nil {
		return err
	}
	if conn == nil {
		return nil
	}
	if err := conn.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, t, err)
	}
	return nil
}

// ReportConfig represents report generation configuration.
type ReportConfig struct {
	// Format is the output format (markdown, json, html).
	Format string `json:"format" mapstructure:"format"`

	// Unit is the latency unit of the report tables.
	Unit string `json:"unit" mapstructure:"unit"`

	// Precision is the number of decimals of converted latencies.
	Precision int `json:"precision" mapstructure:"precision"`

	// DiffPrecision is the number of decimals of the difference column.
	DiffPrecision int `json:"diff_precision" mapstructure:"diff_precision"`

	// Strategy selects the percentile algorithm (nearest-rank, interpolated).
	Strategy string `json:"strategy" mapstructure:"strategy"`

	// OutputPath is the report file written by the report command.
	OutputPath string `json:"output_path" mapstructure:"output_path"`

	// Title overrides the generated report title.
	Title string `json:"title" mapstructure:"title"`

	// IncludeCharts appends box plots to the report.
	IncludeCharts bool `json:"include_charts" mapstructure:"include_charts"`

	// ChartWidth is the width for text-based charts.
	ChartWidth int `json:"chart_width" mapstructure:"chart_width"`

	// Preview renders the Markdown report in the terminal.
	Preview bool `json:"preview" mapstructure:"preview"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	validFormats := map[string]bool{
		"markdown": true,
		"json":     true,
		"html":     true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("%w: invalid format: %s", ErrInvalidConfiguration, c.Format)
	}

	if _, err := percentile.ParseUnit(c.Unit); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if _, err := percentile.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if c.Precision < 0 || c.Precision > 9 {
		return fmt.Errorf("%w: precision must be between 0 and 9", ErrInvalidConfiguration)
	}

	if c.DiffPrecision < 0 || c.DiffPrecision > 9 {
		return fmt.Errorf("%w: diff_precision must be between 0 and 9", ErrInvalidConfiguration)
	}

	if c.OutputPath == "" {
		return fmt.Errorf("%w: output_path is required", ErrInvalidConfiguration)
	}

	if c.IncludeCharts && (c.ChartWidth < 20 || c.ChartWidth > 200) {
		return fmt.Errorf("%w: chart_width must be between 20 and 200", ErrInvalidConfiguration)
	}

	return nil
}

// SummaryOptions returns the percentile options of the report tables.
func (c *ReportConfig) SummaryOptions() (percentile.Options, error) {
	unit, err := percentile.ParseUnit(c.Unit)
	if err != nil {
		return percentile.Options{}, err
	}
	strategy, err := percentile.ParseStrategy(c.Strategy)
	if err != nil {
		return percentile.Options{}, err
	}
	opts := percentile.Options{Unit: unit, Precision: c.Precision, Strategy: strategy}
	return opts, opts.Validate()
}

// HistoryConfig locates the session history database.
type HistoryConfig struct {
	// Enabled records every session in the history database.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Path is the path to the SQLite database file.
	Path string `json:"path" mapstructure:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("%w: history path is required", ErrInvalidConfiguration)
	}
	return nil
}

// MetricsConfig controls Prometheus metric export.
type MetricsConfig struct {
	// Enabled registers the collectors.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TextfilePath receives the metrics in text exposition format after a session.
	TextfilePath string `json:"textfile_path" mapstructure:"textfile_path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	if c.TextfilePath != "" && filepath.Ext(c.TextfilePath) != ".prom" {
		return fmt.Errorf("%w: textfile_path must end in .prom", ErrInvalidConfiguration)
	}
	return nil
}

// AdvancedConfig represents advanced configuration.
type AdvancedConfig struct {
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// LogDir receives the dated log files.
	LogDir string `json:"log_dir" mapstructure:"log_dir"`

	// Timeout bounds a whole session in minutes.
	Timeout int `json:"timeout" mapstructure:"timeout"`
}

// Validate validates the advanced configuration.
func (c *AdvancedConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfiguration, c.LogLevel)
	}

	if c.Timeout < 1 || c.Timeout > 1440 {
		return fmt.Errorf("%w: timeout must be between 1 and 1440 minutes", ErrInvalidConfiguration)
	}

	return nil
}

// Config represents the complete application configuration.
type Config struct {
	// Version is the configuration version.
	Version int `json:"version" mapstructure:"version"`

	Session  SessionConfig  `json:"session" mapstructure:"session"`
	Dataset  dataset.Sizes  `json:"dataset" mapstructure:"dataset"`
	Backends BackendsConfig `json:"backends" mapstructure:"backends"`
	Report   ReportConfig   `json:"report" mapstructure:"report"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
	Advanced AdvancedConfig `json:"advanced" mapstructure:"advanced"`
}

// Validate validates the complete configuration. Backend parameters are
// checked per backend by BackendsConfig.Validate when a session starts.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported configuration version: %d", ErrInvalidConfiguration, c.Version)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset: %w: %w", ErrInvalidConfiguration, err)
	}

	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if err := c.Advanced.Validate(); err != nil {
		return fmt.Errorf("advanced: %w", err)
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Session: SessionConfig{
			Runs:       10,
			Iterations: 1,
			Seed:       42,
			OutputDir:  ".",
		},
		Dataset: dataset.DefaultSizes(),
		Backends: BackendsConfig{
			SurrealDB: connection.SurrealDBConnection{
				BaseConnection: connection.BaseConnection{Name: "surrealdb"},
				URL:            "ws://localhost:8000/rpc",
				Namespace:      "test",
				Database:       "test",
				Username:       "root",
			},
			MongoDB: connection.MongoDBConnection{
				BaseConnection: connection.BaseConnection{Name: "mongodb"},
				Host:           "localhost",
				Port:           27017,
				Database:       "test",
				ReplicaSet:     "rs0",
			},
			ArangoDB: connection.ArangoDBConnection{
				BaseConnection: connection.BaseConnection{Name: "arangodb"},
				Endpoints:      []string{"http://localhost:8529"},
				Database:       "test",
				Username:       "root",
			},
			PostgreSQL: connection.PostgreSQLConnection{
				BaseConnection: connection.BaseConnection{Name: "postgresql"},
				Host:           "localhost",
				Port:           5432,
				Database:       "test",
				Username:       "postgres",
				SSLMode:        "disable",
			},
		},
		Report: ReportConfig{
			Format:        "markdown",
			Unit:          percentile.Milliseconds.String(),
			Precision:     1,
			DiffPrecision: 2,
			Strategy:      percentile.NearestRank.String(),
			OutputPath:    "Bench_report_output.md",
			IncludeCharts: false,
			ChartWidth:    60,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(".deal-bench", "history.db"),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Advanced: AdvancedConfig{
			LogLevel: "info",
			LogDir:   filepath.Join(".deal-bench", "logs"),
			Timeout:  240,
		},
	}
}
