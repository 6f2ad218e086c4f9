package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
	"github.com/whhaicheng/deal-bench/internal/domain/result/resulttest"
)

func writeResults(t *testing.T, dir, name string, file result.File) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, file.Write(f))
	require.NoError(t, f.Close())
	return path
}

func reportConfig(t *testing.T, format string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Report.Format = format
	cfg.Report.OutputPath = filepath.Join(dir, "out", "Bench_report_output.md")
	return cfg, dir
}

func TestReportUseCase_GenerateFromFiles(t *testing.T) {
	cfg, dir := reportConfig(t, "markdown")
	a := writeResults(t, dir, "surrealdb_bench_output.json", resulttest.Full(3, 1e6))
	b := writeResults(t, dir, "mongodb_bench_output.json", resulttest.Full(3, 2e6))

	uc := NewReportUseCase()
	rpt, err := uc.GenerateFromFiles(context.Background(),
		ReportSource{Name: "SurrealDB", Path: a},
		ReportSource{Name: "MongoDB", Path: b},
		cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Report.OutputPath, rpt.FilePath)
	content, err := os.ReadFile(rpt.FilePath)
	require.NoError(t, err)
	assert.Equal(t, rpt.Content, content)
	assert.Contains(t, string(content), "SurrealDB vs MongoDB")
	assert.Contains(t, string(content), "Difference (%)")
}

func TestReportUseCase_JSONFormat(t *testing.T) {
	cfg, dir := reportConfig(t, "json")
	a := writeResults(t, dir, "a.json", resulttest.Full(2, 1e6))
	b := writeResults(t, dir, "b.json", resulttest.Full(2, 1e6))

	rpt, err := NewReportUseCase().GenerateFromFiles(context.Background(),
		ReportSource{Name: "A", Path: a}, ReportSource{Name: "B", Path: b}, cfg)
	require.NoError(t, err)

	assert.Equal(t, report.FormatJSON, rpt.Format)
	assert.Equal(t, ".json", filepath.Ext(rpt.FilePath))
	assert.True(t, json.Valid(rpt.Content))
}

func TestReportUseCase_MissingKey(t *testing.T) {
	cfg, dir := reportConfig(t, "markdown")
	a := writeResults(t, dir, "a.json", resulttest.Full(3, 1e6))
	b := writeResults(t, dir, "b.json", resulttest.Without(resulttest.Full(3, 2e6), "q1"))

	rpt, err := NewReportUseCase().GenerateFromFiles(context.Background(),
		ReportSource{Name: "A", Path: a}, ReportSource{Name: "B", Path: b}, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportIncomplete)
	assert.ErrorIs(t, err, result.ErrMissingKey)

	require.NotNil(t, rpt)
	assert.Len(t, rpt.SectionErrors, 1)
	_, statErr := os.Stat(rpt.FilePath)
	assert.NoError(t, statErr)
}

func TestReportUseCase_Errors(t *testing.T) {
	cfg, dir := reportConfig(t, "markdown")
	a := writeResults(t, dir, "a.json", resulttest.Full(1, 1e6))
	uc := NewReportUseCase()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := uc.GenerateFromFiles(ctx,
			ReportSource{Name: "A", Path: a},
			ReportSource{Name: "B", Path: filepath.Join(dir, "missing.json")}, cfg)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unnamed system", func(t *testing.T) {
		_, err := uc.GenerateFromFiles(ctx, ReportSource{Path: a}, ReportSource{Name: "B", Path: a}, cfg)
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		bad := *cfg
		bad.Report.Format = "pdf"
		_, err := uc.GenerateFromFiles(ctx, ReportSource{Name: "A", Path: a}, ReportSource{Name: "B", Path: a}, &bad)
		assert.Error(t, err)
	})
}

func TestReportUseCase_ListSupportedFormats(t *testing.T) {
	assert.Equal(t,
		[]report.ReportFormat{report.FormatHTML, report.FormatJSON, report.FormatMarkdown},
		NewReportUseCase().ListSupportedFormats())
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		path   string
		format report.ReportFormat
		want   string
	}{
		{"Bench_report_output.md", report.FormatMarkdown, "Bench_report_output.md"},
		{"Bench_report_output.md", report.FormatJSON, "Bench_report_output.json"},
		{"out/report", report.FormatHTML, "out/report.html"},
		{"report.txt", report.FormatMarkdown, "report.txt"},
		{"", report.FormatMarkdown, "Bench_report_output.md"},
	}

	for _, tt := range tests {
		t.Run(tt.path+"->"+tt.format.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.path, tt.format))
		})
	}
}
