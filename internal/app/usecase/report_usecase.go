package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
	infrareport "github.com/whhaicheng/deal-bench/internal/infra/report"
)

// ErrReportIncomplete is returned when some report sections could not be
// rendered. The report is still written.
var ErrReportIncomplete = errors.New("report incomplete")

// ReportSource names one compared system and its result file.
type ReportSource struct {
	Name string
	Path string
}

// ReportUseCase renders comparison reports of two result files.
type ReportUseCase struct {
	// Registered generators
	generators map[report.ReportFormat]report.Generator
}

// NewReportUseCase creates a new report use case with the Markdown, JSON
// and HTML generators registered.
func NewReportUseCase() *ReportUseCase {
	uc := &ReportUseCase{
		generators: make(map[report.ReportFormat]report.Generator),
	}

	uc.RegisterGenerator(infrareport.NewMarkdownGenerator())
	uc.RegisterGenerator(infrareport.NewJSONGenerator())
	uc.RegisterGenerator(infrareport.NewHTMLGenerator())

	return uc
}

// RegisterGenerator registers a report generator.
func (uc *ReportUseCase) RegisterGenerator(generator report.Generator) {
	uc.generators[generator.Format()] = generator
}

// ListSupportedFormats returns the registered formats in name order.
func (uc *ReportUseCase) ListSupportedFormats() []report.ReportFormat {
	formats := make([]report.ReportFormat, 0, len(uc.generators))
	for format := range uc.generators {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// GenerateFromFiles reads both result files and renders the report.
// A is the baseline: differences are relative to it.
func (uc *ReportUseCase) GenerateFromFiles(ctx context.Context, a, b ReportSource, cfg *config.Config) (*report.Report, error) {
	sideA, err := ReadSide(a)
	if err != nil {
		return nil, err
	}
	sideB, err := ReadSide(b)
	if err != nil {
		return nil, err
	}
	return uc.Generate(ctx, sideA, sideB, cfg)
}

// Generate renders the report of two systems and writes it to the
// configured output path. Sections that fail are listed in the returned
// report and joined under ErrReportIncomplete; the file is still written.
func (uc *ReportUseCase) Generate(ctx context.Context, a, b report.Side, cfg *config.Config) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := ReportConfig(&cfg.Report)
	if err != nil {
		return nil, fmt.Errorf("report config: %w", err)
	}

	generator, ok := uc.generators[rc.Format]
	if !ok {
		return nil, fmt.Errorf("no generator registered for format: %s", rc.Format)
	}

	genCtx := report.NewGenerateContext(a, b, cfg.Dataset, rc)
	rpt, err := generator.Generate(genCtx)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	if err := saveReport(rpt, rc.OutputPath); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	rpt.FilePath = rc.OutputPath

	if err := rpt.Err(); err != nil {
		slog.Warn("Report written with unavailable sections",
			"path", rpt.FilePath, "sections", len(rpt.SectionErrors))
		return rpt, fmt.Errorf("%w: %w", ErrReportIncomplete, err)
	}
	slog.Info("Report written", "path", rpt.FilePath, "format", rc.Format.String())
	return rpt, nil
}

// ReportConfig converts the report section of the configuration.
func ReportConfig(c *config.ReportConfig) (*report.ReportConfig, error) {
	format := report.ReportFormat(c.Format)
	if err := format.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.SummaryOptions()
	if err != nil {
		return nil, err
	}
	return &report.ReportConfig{
		Format:        format,
		Summary:       opts,
		DiffPrecision: c.DiffPrecision,
		IncludeCharts: c.IncludeCharts,
		ChartWidth:    c.ChartWidth,
		Title:         c.Title,
		OutputPath:    outputPath(c.OutputPath, format),
	}, nil
}

// outputPath gives the path the extension of format when it carries
// another format's extension or none.
func outputPath(path string, format report.ReportFormat) string {
	if path == "" {
		path = "Bench_report_output"
	}
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case format.FileExtension():
		return path
	case "", ".md", ".json", ".html":
		return strings.TrimSuffix(path, ext) + format.FileExtension()
	default:
		return path
	}
}

// ReadSide reads the result file of one named system.
func ReadSide(src ReportSource) (report.Side, error) {
	if src.Name == "" {
		return report.Side{}, fmt.Errorf("result file %s has no system name", src.Path)
	}
	file, err := readResultFile(src.Path)
	if err != nil {
		return report.Side{}, err
	}
	return report.Side{Name: src.Name, Results: file}, nil
}

// saveReport saves a report to a file.
func saveReport(rpt *report.Report, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, rpt.Content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
