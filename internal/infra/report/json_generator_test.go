package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/report"
	"github.com/whhaicheng/deal-bench/internal/domain/result/resulttest"
)

type decodedReport struct {
	Meta struct {
		Title    string `json:"title"`
		SystemA  string `json:"system_a"`
		SystemB  string `json:"system_b"`
		Unit     string `json:"unit"`
		Strategy string `json:"strategy"`
		Version  string `json:"version"`
	} `json:"meta"`
	Sizes    []report.TableRow `json:"table_sizes"`
	Sections []struct {
		Level   int    `json:"level"`
		Heading string `json:"heading"`
		Text    string `json:"text"`
		Error   string `json:"error"`
		Table   *struct {
			Rows []struct {
				Metric  string  `json:"metric"`
				A       float64 `json:"a"`
				B       float64 `json:"b"`
				DiffPct float64 `json:"diff_pct"`
			} `json:"rows"`
		} `json:"table"`
	} `json:"sections"`
}

// TestJSONGenerator_Format tests format detection.
func TestJSONGenerator_Format(t *testing.T) {
	gen := NewJSONGenerator()
	if gen.Format() != report.FormatJSON {
		t.Errorf("Format() = %v, want %v", gen.Format(), report.FormatJSON)
	}
}

// TestJSONGenerator_Generate tests report generation.
func TestJSONGenerator_Generate(t *testing.T) {
	gen := NewJSONGenerator()

	ctx := newContext(report.FormatJSON, resulttest.Full(3, 1e6), resulttest.Full(3, 2e6))
	rep, err := gen.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, rep.Format)

	var got decodedReport
	require.NoError(t, json.Unmarshal(rep.Content, &got))

	assert.Equal(t, "SurrealDB vs MongoDB benchmark", got.Meta.Title)
	assert.Equal(t, "SurrealDB", got.Meta.SystemA)
	assert.Equal(t, "MongoDB", got.Meta.SystemB)
	assert.Equal(t, "ms", got.Meta.Unit)
	assert.Equal(t, "nearest-rank", got.Meta.Strategy)
	assert.Equal(t, jsonVersion, got.Meta.Version)
	assert.Len(t, got.Sizes, 5)

	doc, err := report.Build(ctx)
	require.NoError(t, err)
	require.Len(t, got.Sections, len(doc.Sections))

	first := got.Sections[0]
	assert.Equal(t, "Overall results", first.Heading)
	require.NotNil(t, first.Table)
	assert.Equal(t, "P99 throughput (QPS)", first.Table.Rows[0].Metric)
	assert.Equal(t, -50.0, first.Table.Rows[0].DiffPct)
	assert.Equal(t, "Total number of queries per run: 22", got.Sections[1].Text)

	for _, s := range got.Sections {
		assert.Empty(t, s.Error, s.Heading)
	}
}

// TestJSONGenerator_SectionError tests that failed sections carry their error.
func TestJSONGenerator_SectionError(t *testing.T) {
	gen := NewJSONGenerator()

	b := resulttest.Without(resulttest.Full(3, 2e6), "q1")
	rep, err := gen.Generate(newContext(report.FormatJSON, resulttest.Full(3, 1e6), b))
	require.NoError(t, err)
	require.Len(t, rep.SectionErrors, 1)

	var got decodedReport
	require.NoError(t, json.Unmarshal(rep.Content, &got))

	var failed []string
	for _, s := range got.Sections {
		if s.Error != "" {
			failed = append(failed, s.Heading)
			assert.Nil(t, s.Table)
			assert.Contains(t, s.Error, "MongoDB")
		}
	}
	assert.Equal(t, []string{"Q1: lookup vs record links"}, failed)
}
