package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

func completedRecord(at time.Time) *history.Record {
	r := newRecord(at, "surrealdb", "completed")
	r.StartTime = at
	r.RunsRequested, r.RunsCompleted = 3, 3
	r.Duration = 4 * time.Second
	r.ResultPath = "surrealdb_bench_output.json"
	r.QueriesPerRun = 22
	r.TotalTimeP50 = 20 * time.Millisecond
	r.TotalTimeP99 = 30 * time.Millisecond
	r.ThroughputP50 = 1100
	r.ThroughputP99 = 733.3
	r.TotalTimes = []int64{10e6, 20e6, 30e6}
	return r
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"txt", ExportTXT, false},
		{"markdown", ExportMarkdown, false},
		{"MD", ExportMarkdown, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExportFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportUseCase_ExportRecord(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	rec := completedRecord(at)

	tests := []struct {
		format   ExportFormat
		ext      string
		contains []string
	}{
		{ExportTXT, ".txt", []string{
			"backend:          surrealdb",
			"runs:             3/3",
			"throughput p50:   1100.0 qps",
			"total time (ms):  20.00 ± 10.00 (min/max 10.00 .. 30.00, cv 50.00%)",
		}},
		{ExportMarkdown, ".md", []string{
			"# Benchmark session " + rec.ID,
			"| Backend | surrealdb |",
			"| 3 | 30.00 |",
			"**Mean ± stddev:** 20.00 ± 10.00, **CV:** 50.00%",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			uc := NewExportUseCase(t.TempDir())
			path, err := uc.ExportRecord(context.Background(), rec, tt.format)
			require.NoError(t, err)

			assert.Equal(t, "session_surrealdb_20240301_123000_"+rec.ID+tt.ext, filepath.Base(path))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestExportUseCase_FailedRecord(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	rec := newRecord(at, "mongodb", "failed")
	rec.StartTime = at
	rec.ErrorMessage = "execution failed: run 1: boom"

	uc := NewExportUseCase(t.TempDir())
	path, err := uc.ExportRecord(context.Background(), rec, ExportMarkdown)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| Error | execution failed: run 1: boom |")
	assert.NotContains(t, string(data), "Core Metrics")
}

func TestExportUseCase_ExportAllRecords(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	records := []*history.Record{completedRecord(at), completedRecord(at.Add(time.Minute))}

	uc := NewExportUseCase(t.TempDir())
	n, err := uc.ExportAllRecords(context.Background(), records, ExportTXT)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(uc.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = uc.ExportAllRecords(context.Background(), nil, ExportTXT)
	assert.Error(t, err)

	_, err = uc.ExportRecord(context.Background(), records[0], ExportFormat("csv"))
	assert.Error(t, err)
}
