// Package percentile reduces pooled measurements to a fixed percentile profile.
//
// Two selection strategies exist. NearestRank picks sorted[floor((n-1)*p/100)]
// and is the default. Interpolated weights the two closest ranks linearly.
// Both report the literal minimum and maximum.
package percentile

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptyInput is returned when a summary is requested for no values.
	ErrEmptyInput = errors.New("cannot summarize an empty measurement set")

	// ErrUnknownUnit is returned for unsupported time units.
	ErrUnknownUnit = errors.New("unknown time unit")

	// ErrUnknownStrategy is returned for unsupported percentile strategies.
	ErrUnknownStrategy = errors.New("unknown percentile strategy")
)

// Strategy selects how a percentile rank is resolved.
type Strategy string

const (
	NearestRank  Strategy = "nearest-rank"
	Interpolated Strategy = "interpolated"
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// Validate checks if the strategy is known.
func (s Strategy) Validate() error {
	switch s {
	case NearestRank, Interpolated:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}
}

// ParseStrategy parses a strategy name. An empty name selects NearestRank.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return NearestRank, nil
	}
	st := Strategy(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Point is one entry of the fixed percentile profile.
type Point struct {
	Label   string
	Percent int
}

// Points is the profile every summary reports, in output order.
var Points = []Point{
	{"min", 0},
	{"p1", 1},
	{"p5", 5},
	{"p25", 25},
	{"p50", 50},
	{"p75", 75},
	{"p90", 90},
	{"p99", 99},
	{"max", 100},
}

// ThroughputUnit labels throughput summaries, which are not unit-converted.
const ThroughputUnit = "qps"

// Entry is one labelled value in a summary.
type Entry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Summary is a read-only percentile profile in a single unit.
type Summary struct {
	Unit    string  `json:"unit"`
	Entries []Entry `json:"entries"`
}

// Get returns the value for a label.
func (s Summary) Get(label string) (float64, bool) {
	for _, e := range s.Entries {
		if e.Label == label {
			return e.Value, true
		}
	}
	return 0, false
}

// Labels returns the entry labels in order.
func (s Summary) Labels() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Label
	}
	return out
}

// MetricLabel renders a label with its unit, e.g. "p50(ms)".
func (s Summary) MetricLabel(label string) string {
	return fmt.Sprintf("%s(%s)", label, s.Unit)
}

// Options control latency summarization.
type Options struct {
	Unit      Unit
	Precision int
	Strategy  Strategy
}

// DefaultOptions returns millisecond, one-decimal, nearest-rank options.
func DefaultOptions() Options {
	return Options{
		Unit:      Milliseconds,
		Precision: 1,
		Strategy:  NearestRank,
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if err := o.Unit.Validate(); err != nil {
		return err
	}
	if err := o.Strategy.Validate(); err != nil {
		return err
	}
	if o.Precision < 0 || o.Precision > 9 {
		return fmt.Errorf("precision must be between 0 and 9, got %d", o.Precision)
	}
	return nil
}

// Summarize reduces nanosecond durations to the percentile profile in opts.Unit.
// Interpolated ranks are truncated to whole nanoseconds before conversion.
func Summarize(values []int64, opts Options) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptyInput
	}
	if err := opts.Validate(); err != nil {
		return Summary{}, err
	}

	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	entries := make([]Entry, len(Points))
	for i, p := range Points {
		raw := rank(sorted, p.Percent, opts.Strategy)
		if opts.Strategy == Interpolated {
			raw = math.Trunc(raw)
		}
		entries[i] = Entry{Label: p.Label, Value: FormatTime(raw, opts.Unit, opts.Precision)}
	}

	return Summary{Unit: opts.Unit.String(), Entries: entries}, nil
}

// SummarizeThroughput reduces per-run throughput values without unit conversion.
func SummarizeThroughput(values []float64, strategy Strategy) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptyInput
	}
	if err := strategy.Validate(); err != nil {
		return Summary{}, err
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	entries := make([]Entry, len(Points))
	for i, p := range Points {
		entries[i] = Entry{Label: p.Label, Value: rank(sorted, p.Percent, strategy)}
	}

	return Summary{Unit: ThroughputUnit, Entries: entries}, nil
}

// rank resolves a percentile over sorted values. 0 and 100 always map to
// the literal minimum and maximum.
func rank(sorted []float64, percent int, strategy Strategy) float64 {
	n := len(sorted)
	switch percent {
	case 0:
		return sorted[0]
	case 100:
		return sorted[n-1]
	}

	if strategy == Interpolated {
		return Interpolate(sorted, float64(percent))
	}
	return sorted[((n-1)*percent)/100]
}

// Interpolate returns the linearly interpolated percentile of sorted values.
func Interpolate(sorted []float64, percent float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	index := (percent / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
