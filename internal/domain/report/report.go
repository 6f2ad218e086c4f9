// Package report provides report generation domain models.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/comparison"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
)

// ReportFormat represents the output format for a report.
type ReportFormat string

const (
	// FormatMarkdown generates Markdown format reports.
	FormatMarkdown ReportFormat = "markdown"
	// FormatHTML generates HTML format reports.
	FormatHTML ReportFormat = "html"
	// FormatJSON generates JSON format reports.
	FormatJSON ReportFormat = "json"
)

// String returns the string representation of the format.
func (f ReportFormat) String() string {
	return string(f)
}

// Validate checks if the format is valid.
func (f ReportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatHTML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid report format: %s", f)
	}
}

// FileExtension returns the file extension for this format.
func (f ReportFormat) FileExtension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ReportConfig represents configuration for report generation.
type ReportConfig struct {
	// Format is the output format.
	Format ReportFormat

	// Summary controls latency unit, precision and percentile strategy.
	Summary percentile.Options

	// DiffPrecision is the number of decimals of the difference column.
	DiffPrecision int

	// IncludeCharts appends box plots of the run totals.
	IncludeCharts bool

	// ChartWidth is the width for text-based charts (default: 60).
	ChartWidth int

	// Title is the custom report title (optional).
	Title string

	// OutputPath is the file path for the report (optional).
	OutputPath string
}

// DefaultConfig returns a default report configuration.
func DefaultConfig(format ReportFormat) *ReportConfig {
	return &ReportConfig{
		Format:        format,
		Summary:       percentile.DefaultOptions(),
		DiffPrecision: comparison.DefaultPrecision,
		IncludeCharts: false,
		ChartWidth:    60,
	}
}

// Report represents a generated report.
type Report struct {
	// Format is the report format.
	Format ReportFormat

	// Content is the report content.
	Content []byte

	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time

	// FilePath is the file path if saved to disk.
	FilePath string

	// SectionErrors lists the sections that could not be rendered.
	// The content still carries every other section.
	SectionErrors []error
}

// Err joins the section errors, nil when every section rendered.
func (r *Report) Err() error {
	return errors.Join(r.SectionErrors...)
}

// Generator is the interface for report generators.
type Generator interface {
	// Generate generates a report from the provided data.
	Generate(ctx *GenerateContext) (*Report, error)

	// Format returns the format this generator produces.
	Format() ReportFormat
}

// Side is one of the two compared systems.
type Side struct {
	// Name is the system name used in headings and table columns.
	Name string

	// Results is the system's persisted result file.
	Results result.File
}

// GenerateContext contains data for report generation.
type GenerateContext struct {
	// A is the baseline system; differences are relative to it.
	A Side

	// B is the compared system.
	B Side

	// Sizes are the dataset table sizes of both sessions.
	Sizes dataset.Sizes

	// GeneratedAt stamps the report.
	GeneratedAt time.Time

	// Config is the report configuration.
	Config *ReportConfig
}

// NewGenerateContext creates a new generate context.
func NewGenerateContext(a, b Side, sizes dataset.Sizes, config *ReportConfig) *GenerateContext {
	return &GenerateContext{
		A:           a,
		B:           b,
		Sizes:       sizes,
		GeneratedAt: time.Now(),
		Config:      config,
	}
}

// Validate validates the generate context.
func (ctx *GenerateContext) Validate() error {
	if ctx.A.Name == "" || ctx.B.Name == "" {
		return fmt.Errorf("both systems must be named")
	}
	if ctx.A.Results == nil || ctx.B.Results == nil {
		return fmt.Errorf("both result files are required")
	}
	if ctx.Config == nil {
		return fmt.Errorf("config is required")
	}
	if err := ctx.Config.Format.Validate(); err != nil {
		return err
	}
	if err := ctx.Config.Summary.Validate(); err != nil {
		return err
	}
	return nil
}

// GetTimestamp returns the formatted timestamp for a time pointer.
func GetTimestamp(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}
