package percentile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nsOptions() Options {
	return Options{Unit: Nanoseconds, Precision: 1, Strategy: NearestRank}
}

func TestSummarize_FiveValues(t *testing.T) {
	s, err := Summarize([]int64{100, 200, 300, 400, 500}, nsOptions())
	require.NoError(t, err)

	assert.Equal(t, "ns", s.Unit)
	assert.Equal(t, []string{"min", "p1", "p5", "p25", "p50", "p75", "p90", "p99", "max"}, s.Labels())

	want := map[string]float64{
		"min": 100, "p1": 100, "p5": 100, "p25": 200,
		"p50": 300, "p75": 400, "p90": 400, "p99": 400, "max": 500,
	}
	for label, v := range want {
		got, ok := s.Get(label)
		require.True(t, ok, label)
		assert.Equal(t, v, got, label)
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	for _, strategy := range []Strategy{NearestRank, Interpolated} {
		t.Run(strategy.String(), func(t *testing.T) {
			opts := nsOptions()
			opts.Strategy = strategy
			s, err := Summarize(nil, opts)
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Empty(t, s.Entries)
		})
	}

	_, err := SummarizeThroughput([]float64{}, NearestRank)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSummarize_MinMaxExact(t *testing.T) {
	values := []int64{7_300_000, 1_250_000, 9_999_999, 3_000_000, 4_100_000}

	s, err := Summarize(values, Options{Unit: Milliseconds, Precision: 1, Strategy: Interpolated})
	require.NoError(t, err)

	minV, _ := s.Get("min")
	maxV, _ := s.Get("max")
	assert.Equal(t, 1.3, minV)
	assert.Equal(t, 10.0, maxV)
}

func TestSummarize_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]int64, 257)
	for i := range values {
		values[i] = rng.Int63n(50_000_000)
	}

	for _, strategy := range []Strategy{NearestRank, Interpolated} {
		t.Run(strategy.String(), func(t *testing.T) {
			s, err := Summarize(values, Options{Unit: Microseconds, Precision: 2, Strategy: strategy})
			require.NoError(t, err)
			for i := 1; i < len(s.Entries); i++ {
				assert.LessOrEqual(t, s.Entries[i-1].Value, s.Entries[i].Value,
					"%s > %s", s.Entries[i-1].Label, s.Entries[i].Label)
			}
		})
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	values := []int64{900, 15, 42, 42, 1_000_000, 3, 77, 512}
	shuffled := []int64{42, 3, 1_000_000, 77, 900, 42, 512, 15}

	a, err := Summarize(values, nsOptions())
	require.NoError(t, err)
	b, err := Summarize(shuffled, nsOptions())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	values := []int64{5, 1, 4}
	_, err := Summarize(values, nsOptions())
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 1, 4}, values)
}

func TestSummarize_StrategiesDiffer(t *testing.T) {
	values := []int64{10, 20, 30, 40}

	nearest, err := Summarize(values, nsOptions())
	require.NoError(t, err)
	opts := nsOptions()
	opts.Strategy = Interpolated
	interp, err := Summarize(values, opts)
	require.NoError(t, err)

	n, _ := nearest.Get("p50")
	i, _ := interp.Get("p50")
	assert.Equal(t, 20.0, n)
	assert.Equal(t, 25.0, i)
}

func TestSummarize_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown unit", Options{Unit: "min", Strategy: NearestRank}},
		{"unknown strategy", Options{Unit: Milliseconds, Strategy: "median"}},
		{"negative precision", Options{Unit: Milliseconds, Strategy: NearestRank, Precision: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize([]int64{1}, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestSummarizeThroughput(t *testing.T) {
	s, err := SummarizeThroughput([]float64{12.5, 10.1, 11.3}, NearestRank)
	require.NoError(t, err)

	assert.Equal(t, ThroughputUnit, s.Unit)
	minV, _ := s.Get("min")
	p50, _ := s.Get("p50")
	maxV, _ := s.Get("max")
	assert.Equal(t, 10.1, minV)
	assert.Equal(t, 11.3, p50)
	assert.Equal(t, 12.5, maxV)
	assert.Equal(t, "p50(qps)", s.MetricLabel("p50"))
	assert.Equal(t, "p99(qps)", s.MetricLabel("p99"))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name      string
		ns        float64
		unit      Unit
		precision int
		want      float64
	}{
		{"whole ms kept", 5_000_000, Milliseconds, 1, 5},
		{"rounded ms", 1_234_567, Milliseconds, 1, 1.2},
		{"rounded two places", 1_235_567, Milliseconds, 2, 1.24},
		{"precision zero", 1_600_000, Milliseconds, 0, 2},
		{"seconds", 2_500_000_000, Seconds, 1, 2.5},
		{"microseconds", 1_500, Microseconds, 1, 1.5},
		{"nanoseconds", 42, Nanoseconds, 1, 42},
		{"tie to even down", 250_000, Milliseconds, 1, 0.2},
		{"tie whole", 2_500_000, Milliseconds, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.ns, tt.unit, tt.precision))
		})
	}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		ns := float64(rng.Int63n(10_000_000_000))
		ms := FormatTime(ns, Milliseconds, 2)
		back := ms * Milliseconds.Divisor()
		// two decimals of a millisecond = 10µs; half of that is the rounding bound
		assert.InDelta(t, ns, back, 5_001)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v         float64
		precision int
		want      float64
	}{
		{0.25, 1, 0.2},
		{0.75, 1, 0.8},
		{2.5, 0, 2},
		{3.5, 0, 4},
		{-2.5, 0, -2},
		{12.125, 2, 12.12},
		{33.3333, 2, 33.33},
		{1.26, 1, 1.3},
		{7, -1, 7},
	}

	for _, tt := range tests {
		t.Run(FormatValue(tt.v), func(t *testing.T) {
			assert.Equal(t, tt.want, Round(tt.v, tt.precision))
		})
	}
}

func TestSummarize_TieRoundsToEven(t *testing.T) {
	s, err := Summarize([]int64{250_000, 250_000}, DefaultOptions())
	require.NoError(t, err)

	p50, ok := s.Get("p50")
	require.True(t, ok)
	assert.Equal(t, 0.2, p50)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("µs")
	require.NoError(t, err)
	assert.Equal(t, Microseconds, u)

	_, err = ParseUnit("minutes")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "300", FormatValue(300))
	assert.Equal(t, "1.25", FormatValue(1.25))
	assert.Equal(t, "-50", FormatValue(-50))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, NearestRank, s)

	s, err = ParseStrategy("interpolated")
	require.NoError(t, err)
	assert.Equal(t, Interpolated, s)

	_, err = ParseStrategy("median")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
