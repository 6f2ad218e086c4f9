package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/report"
	"github.com/whhaicheng/deal-bench/internal/domain/result/resulttest"
)

// TestHTMLGenerator_Format tests format detection.
func TestHTMLGenerator_Format(t *testing.T) {
	gen := NewHTMLGenerator()
	if gen.Format() != report.FormatHTML {
		t.Errorf("Format() = %v, want %v", gen.Format(), report.FormatHTML)
	}
}

// TestHTMLGenerator_Generate tests report generation.
func TestHTMLGenerator_Generate(t *testing.T) {
	gen := NewHTMLGenerator()

	ctx := newContext(report.FormatHTML, resulttest.Full(3, 1e6), resulttest.Full(3, 2e6))
	ctx.Config.IncludeCharts = true
	rep, err := gen.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.FormatHTML, rep.Format)

	content := string(rep.Content)
	assert.True(t, strings.HasPrefix(content, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(content, "</html>\n"))
	assert.Contains(t, content, "<title>SurrealDB vs MongoDB benchmark</title>")
	assert.Contains(t, content, "<h1>SurrealDB vs MongoDB benchmark</h1>")
	assert.Contains(t, content, "<h3>Overall results</h3>")
	assert.Contains(t, content, "<table>")
	assert.Contains(t, content, "<th>Difference (%)</th>")
	assert.Contains(t, content, "<pre><code")
	assert.NotContains(t, content, "| Metric")
}

// TestHTMLGenerator_EscapesTitle tests that the custom title is escaped.
func TestHTMLGenerator_EscapesTitle(t *testing.T) {
	gen := NewHTMLGenerator()

	ctx := newContext(report.FormatHTML, resulttest.Full(1, 1e6), resulttest.Full(1, 1e6))
	ctx.Config.Title = "Surreal <&> Mongo"
	rep, err := gen.Generate(ctx)
	require.NoError(t, err)

	assert.Contains(t, string(rep.Content), "<title>Surreal &lt;&amp;&gt; Mongo</title>")
}

// TestHTMLGenerator_SectionError tests failed section rendering.
func TestHTMLGenerator_SectionError(t *testing.T) {
	gen := NewHTMLGenerator()

	b := resulttest.Without(resulttest.Full(2, 1e6), "q3")
	rep, err := gen.Generate(newContext(report.FormatHTML, resulttest.Full(2, 1e6), b))
	require.NoError(t, err)

	assert.Len(t, rep.SectionErrors, 1)
	assert.Contains(t, string(rep.Content), "<blockquote>")
	assert.Contains(t, string(rep.Content), "<strong>Section unavailable:</strong>")
}
