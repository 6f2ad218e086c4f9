// Package comparison juxtaposes two systems' percentile summaries and
// computes their relative difference.
package comparison

import (
	"errors"
	"fmt"

	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
)

var (
	// ErrSummaryMismatch is returned when two summaries do not share labels and unit.
	ErrSummaryMismatch = errors.New("summaries are not comparable")
)

// DefaultPrecision is the number of decimals kept in a percentage difference.
const DefaultPrecision = 2

// Row is one metric's side-by-side value for two systems.
type Row struct {
	Metric  string  `json:"metric"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	DiffPct float64 `json:"diff_pct"`
}

// Table is an ordered set of rows under a title.
type Table struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// DiffPercent returns ((b-a)/a)*100 rounded to precision decimals.
// Either side being zero yields 0.
func DiffPercent(a, b float64, precision int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	_, pct := CalculateDelta(b, a)
	return percentile.Round(pct, precision)
}

// Compare pairs two summaries positionally. Both must carry the same unit
// and the same label sequence. Row order follows the summaries.
func Compare(a, b percentile.Summary, precision int) ([]Row, error) {
	if a.Unit != b.Unit {
		return nil, fmt.Errorf("%w: unit %q vs %q", ErrSummaryMismatch, a.Unit, b.Unit)
	}
	if len(a.Entries) != len(b.Entries) {
		return nil, fmt.Errorf("%w: %d vs %d entries", ErrSummaryMismatch, len(a.Entries), len(b.Entries))
	}

	rows := make([]Row, len(a.Entries))
	for i := range a.Entries {
		ea, eb := a.Entries[i], b.Entries[i]
		if ea.Label != eb.Label {
			return nil, fmt.Errorf("%w: label %q vs %q at position %d", ErrSummaryMismatch, ea.Label, eb.Label, i)
		}
		rows[i] = Row{
			Metric:  a.MetricLabel(ea.Label),
			A:       ea.Value,
			B:       eb.Value,
			DiffPct: DiffPercent(ea.Value, eb.Value, precision),
		}
	}

	return rows, nil
}

// NewRow builds a single row from two already formatted values.
func NewRow(metric string, a, b float64, precision int) Row {
	return Row{
		Metric:  metric,
		A:       a,
		B:       b,
		DiffPct: DiffPercent(a, b, precision),
	}
}
