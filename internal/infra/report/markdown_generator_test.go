package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
	"github.com/whhaicheng/deal-bench/internal/domain/result/resulttest"
)

func newContext(format report.ReportFormat, a, b result.File) *report.GenerateContext {
	return report.NewGenerateContext(
		report.Side{Name: "SurrealDB", Results: a},
		report.Side{Name: "MongoDB", Results: b},
		dataset.DefaultSizes(),
		report.DefaultConfig(format),
	)
}

// cells returns the trimmed cells of the first table row whose first
// cell is metric.
func cells(t *testing.T, content, metric string) []string {
	t.Helper()
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "| ") {
			continue
		}
		parts := strings.Split(strings.Trim(line, "|"), "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == metric {
			return parts
		}
	}
	t.Fatalf("row %q not found", metric)
	return nil
}

// TestMarkdownGenerator_Format tests format detection.
func TestMarkdownGenerator_Format(t *testing.T) {
	gen := NewMarkdownGenerator()
	if gen.Format() != report.FormatMarkdown {
		t.Errorf("Format() = %v, want %v", gen.Format(), report.FormatMarkdown)
	}
}

// TestMarkdownGenerator_Generate tests report generation.
func TestMarkdownGenerator_Generate(t *testing.T) {
	gen := NewMarkdownGenerator()

	rep, err := gen.Generate(newContext(report.FormatMarkdown, resulttest.Full(3, 1e6), resulttest.Full(3, 2e6)))
	require.NoError(t, err)
	assert.Equal(t, report.FormatMarkdown, rep.Format)
	assert.NoError(t, rep.Err())

	content := string(rep.Content)
	for _, want := range []string{
		"# SurrealDB vs MongoDB benchmark\n",
		"This benchmark compares SurrealDB and MongoDB performance",
		"### Overall results\n",
		"Total number of queries per run: 22\n",
		"### Overall throughput\n",
		"## Results by category\n",
		"### Write latency\n",
		"#### Insert\n",
		"### Read latency\n",
		"## Results by query\n",
		"## Run variability\n",
		"*Generated by deal-bench at ",
	} {
		assert.Contains(t, content, want)
	}
	assert.NotContains(t, content, "```text")

	assert.Equal(t, []string{"Metric", "SurrealDB", "MongoDB", "Difference (%)"}, cells(t, content, "Metric"))
	assert.Equal(t, []string{"order", "10000"}, cells(t, content, "order"))
	assert.Equal(t, []string{"P99 throughput (QPS)", "20", "10", "-50"}, cells(t, content, "P99 throughput (QPS)"))
	assert.Equal(t, []string{"P99 latency (ms)", "2", "4", "100"}, cells(t, content, "P99 latency (ms)"))

	variability := cells(t, content, "SurrealDB")
	require.Len(t, variability, 6)
	assert.Equal(t, "3", variability[1])
	assert.Equal(t, "2.00 ± 1.00", variability[2])
	assert.Equal(t, "1.00 .. 3.00", variability[3])
}

// TestMarkdownGenerator_SectionOrder checks headline sections appear in order.
func TestMarkdownGenerator_SectionOrder(t *testing.T) {
	gen := NewMarkdownGenerator()
	rep, err := gen.Generate(newContext(report.FormatMarkdown, resulttest.Full(2, 1e6), resulttest.Full(2, 1e6)))
	require.NoError(t, err)

	content := string(rep.Content)
	last := -1
	for _, h := range []string{
		"### Overall results", "### Overall throughput", "### Overall latency",
		"### Overall write latency", "### Overall read latency",
		"## Results by category", "## Results by query", "## Run variability",
	} {
		idx := strings.Index(content, h+"\n")
		require.GreaterOrEqual(t, idx, 0, h)
		assert.Greater(t, idx, last, h)
		last = idx
	}
}

// TestMarkdownGenerator_MissingKey renders the rest of the report around a failed section.
func TestMarkdownGenerator_MissingKey(t *testing.T) {
	gen := NewMarkdownGenerator()

	b := resulttest.Without(resulttest.Full(3, 2e6), "q1")
	rep, err := gen.Generate(newContext(report.FormatMarkdown, resulttest.Full(3, 1e6), b))
	require.NoError(t, err)

	require.Len(t, rep.SectionErrors, 1)
	assert.ErrorIs(t, rep.Err(), result.ErrMissingKey)

	content := string(rep.Content)
	assert.Equal(t, 1, strings.Count(content, "> **Section unavailable:**"))
	assert.Contains(t, content, "### Q2: lookup vs graph - one connection\n")
	assert.Contains(t, content, "P99 throughput (QPS)")
}

// TestMarkdownGenerator_Charts tests chart rendering.
func TestMarkdownGenerator_Charts(t *testing.T) {
	gen := NewMarkdownGenerator()

	ctx := newContext(report.FormatMarkdown, resulttest.Full(3, 1e6), resulttest.Full(3, 2e6))
	ctx.Config.IncludeCharts = true
	rep, err := gen.Generate(ctx)
	require.NoError(t, err)

	content := string(rep.Content)
	assert.Contains(t, content, "## Distribution\n")
	assert.Equal(t, 10, strings.Count(content, "```text\n"))
	assert.Contains(t, content, "┃")
	assert.Contains(t, content, "│")
}

// TestMarkdownGenerator_Invalid tests context validation.
func TestMarkdownGenerator_Invalid(t *testing.T) {
	gen := NewMarkdownGenerator()

	ctx := newContext(report.FormatMarkdown, resulttest.Full(1, 1e6), nil)
	_, err := gen.Generate(ctx)
	assert.Error(t, err)
}

// TestWriteTable tests column padding.
func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	writeTable(&sb, []string{"System", "Mean ± StdDev (ms)"}, [][]string{
		{"SurrealDB", "2.00 ± 1.00"},
		{"dry", "0"},
	})

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	width := len([]rune(lines[0]))
	for _, line := range lines {
		assert.Equal(t, width, len([]rune(line)), line)
	}
	assert.Equal(t, "|-----------|--------------------|", lines[1])
}
