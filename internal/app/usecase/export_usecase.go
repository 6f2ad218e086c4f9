package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/comparison"
	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

// ExportFormat represents the export format type.
type ExportFormat string

const (
	ExportTXT      ExportFormat = "txt"
	ExportMarkdown ExportFormat = "markdown"
)

// ParseExportFormat parses an export format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(s)); f {
	case ExportTXT, ExportMarkdown:
		return f, nil
	case "md":
		return ExportMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ExportUseCase writes history records to standalone files.
type ExportUseCase struct {
	exportDir string
}

// NewExportUseCase creates a new export use case.
func NewExportUseCase(exportDir string) *ExportUseCase {
	if exportDir == "" {
		exportDir = "./exports"
	}
	return &ExportUseCase{
		exportDir: exportDir,
	}
}

// ExportRecord exports a single history record and returns the file path.
func (uc *ExportUseCase) ExportRecord(ctx context.Context, record *history.Record, format ExportFormat) (string, error) {
	if err := os.MkdirAll(uc.exportDir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(uc.exportDir, exportFilename(record, format))
	var content string
	switch format {
	case ExportTXT:
		content = recordText(record)
	case ExportMarkdown:
		content = recordMarkdown(record)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// ExportAllRecords exports every record. It returns the number exported
// and keeps going past individual failures.
func (uc *ExportUseCase) ExportAllRecords(ctx context.Context, records []*history.Record, format ExportFormat) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("no records to export")
	}

	var exported int
	var failed []string
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := uc.ExportRecord(ctx, record, format); err != nil {
			slog.Error("Failed to export record", "session", record.ID, "error", err)
			failed = append(failed, record.ID)
			continue
		}
		exported++
	}

	if len(failed) > 0 {
		return exported, fmt.Errorf("failed to export %d records: %v", len(failed), failed)
	}
	return exported, nil
}

// Dir returns the export directory.
func (uc *ExportUseCase) Dir() string {
	return uc.exportDir
}

// exportFilename is session_<backend>_<start>_<id>.<ext>.
func exportFilename(record *history.Record, format ExportFormat) string {
	ext := string(format)
	if format == ExportMarkdown {
		ext = "md"
	}
	return fmt.Sprintf("session_%s_%s_%s.%s",
		record.Backend, record.StartTime.UTC().Format("20060102_150405"), record.ID, ext)
}

func totalTimeStats(record *history.Record) comparison.RunMetricStats {
	ms := make([]float64, len(record.TotalTimes))
	for i, ns := range record.TotalTimes {
		ms[i] = float64(ns) / float64(time.Millisecond)
	}
	return comparison.CalculateRunMetricStats(ms)
}

func recordText(record *history.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "session:          %s\n", record.ID)
	fmt.Fprintf(&b, "backend:          %s\n", record.Backend)
	fmt.Fprintf(&b, "state:            %s\n", record.State)
	fmt.Fprintf(&b, "runs:             %d/%d\n", record.RunsCompleted, record.RunsRequested)
	fmt.Fprintf(&b, "start time:       %s\n", record.StartTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "duration:         %s\n", record.Duration)
	if record.ErrorMessage != "" {
		fmt.Fprintf(&b, "error:            %s\n", record.ErrorMessage)
	}
	if !record.Succeeded() {
		return b.String()
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "result file:      %s\n", record.ResultPath)
	fmt.Fprintf(&b, "queries per run:  %d\n", record.QueriesPerRun)
	fmt.Fprintf(&b, "total time p50:   %s\n", record.TotalTimeP50)
	fmt.Fprintf(&b, "total time p99:   %s\n", record.TotalTimeP99)
	fmt.Fprintf(&b, "throughput p50:   %.1f qps\n", record.ThroughputP50)
	fmt.Fprintf(&b, "throughput p99:   %.1f qps\n", record.ThroughputP99)

	stats := totalTimeStats(record)
	fmt.Fprintf(&b, "total time (ms):  %s (min/max %s, cv %.2f%%)\n",
		comparison.FormatMeanStdDev(stats), comparison.FormatMinMax(stats), stats.CV())
	return b.String()
}

func recordMarkdown(record *history.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benchmark session %s\n\n", record.ID)
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(&b, "| Backend | %s |\n", record.Backend)
	fmt.Fprintf(&b, "| State | %s |\n", record.State)
	fmt.Fprintf(&b, "| Runs | %d/%d |\n", record.RunsCompleted, record.RunsRequested)
	fmt.Fprintf(&b, "| Start Time | %s |\n", record.StartTime.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "| Duration | %s |\n", record.Duration)
	if record.ErrorMessage != "" {
		fmt.Fprintf(&b, "| Error | %s |\n", strings.ReplaceAll(record.ErrorMessage, "|", `\|`))
	}
	b.WriteString("\n")
	if !record.Succeeded() {
		return b.String()
	}

	b.WriteString("## Core Metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Queries per run | %d |\n", record.QueriesPerRun)
	fmt.Fprintf(&b, "| Total time p50 | %s |\n", record.TotalTimeP50)
	fmt.Fprintf(&b, "| Total time p99 | %s |\n", record.TotalTimeP99)
	fmt.Fprintf(&b, "| **Throughput p50** | **%.1f qps** |\n", record.ThroughputP50)
	fmt.Fprintf(&b, "| Throughput p99 | %.1f qps |\n", record.ThroughputP99)
	fmt.Fprintf(&b, "| Result file | `%s` |\n", record.ResultPath)
	b.WriteString("\n")

	if len(record.TotalTimes) > 0 {
		stats := totalTimeStats(record)
		b.WriteString("## Total Time per Run (ms)\n\n")
		b.WriteString("| Run | Total time |\n")
		b.WriteString("|-----|------------|\n")
		for i, v := range stats.Values {
			fmt.Fprintf(&b, "| %d | %.2f |\n", i+1, v)
		}
		fmt.Fprintf(&b, "\n**Mean ± stddev:** %s, **CV:** %.2f%%\n", comparison.FormatMeanStdDev(stats), stats.CV())
	}
	return b.String()
}
