package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/measure"
)

func TestThroughput(t *testing.T) {
	tests := []struct {
		name    string
		queries int
		total   time.Duration
		want    float64
	}{
		{"rounded seconds", 22, 2040 * time.Millisecond, 11.0},
		{"one decimal", 22, 3 * time.Second, 7.3},
		{"sub 50ms uses exact seconds", 22, 20 * time.Millisecond, 1100},
		{"tied seconds round to even", 22, 250 * time.Millisecond, 110},
		{"zero duration", 22, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Throughput(tt.queries, tt.total))
		})
	}
}

func fullSeries(iterations func(catalogue.Query) int) []measure.Series {
	var out []measure.Series
	for _, q := range catalogue.Queries {
		n := iterations(q)
		ms := make([]measure.Measurement, n)
		for i := range ms {
			ms[i] = measure.Measurement(time.Millisecond)
		}
		out = append(out, measure.Series{Key: q.ID.String(), Measurements: ms})
	}
	return out
}

func TestNewRun(t *testing.T) {
	series := fullSeries(func(catalogue.Query) int { return 1 })

	r, err := NewRun(series, 5*time.Second)
	require.NoError(t, err)

	get := func(key string) float64 {
		v, ok := r.Get(key)
		require.True(t, ok, key)
		require.Len(t, v.Numbers, 1, key)
		return v.Numbers[0]
	}

	ms := float64(time.Millisecond)
	assert.Equal(t, 5*ms, get("insert_duration"))
	assert.Equal(t, 5.0, get("insert_query_count"))
	assert.Equal(t, 4.0, get("index_query_count"))
	assert.Equal(t, 2*ms, get("read_filter_duration"))
	assert.Equal(t, 7.0, get(catalogue.ReadQueryCountKey))
	assert.Equal(t, 7*ms, get(catalogue.TotalReadDuration))
	assert.Equal(t, 15*ms, get(catalogue.TotalWriteDuration))
	assert.Equal(t, 22*ms, get(catalogue.TotalTimeDuration))
	assert.Equal(t, 22.0, get(catalogue.TotalQueriesCount))
	assert.Equal(t, 1000.0, get(catalogue.TotalThroughputQPS))
	assert.Equal(t, float64(5*time.Second), get(catalogue.WallTimeDuration))
	assert.Equal(t, ms, get("q1"))
}

func TestNewRun_RepeatedReads(t *testing.T) {
	series := fullSeries(func(q catalogue.Query) int {
		info, _ := catalogue.CategoryOf(q.Category)
		if info.Write {
			return 1
		}
		return 3
	})

	r, err := NewRun(series, time.Second)
	require.NoError(t, err)

	q1, _ := r.Get("q1")
	assert.Len(t, q1.Numbers, 3)
	assert.Equal(t, 21.0, r.Sum(catalogue.ReadQueryCountKey))
	assert.Equal(t, 36.0, r.Sum(catalogue.TotalQueriesCount))
}

func TestNewRun_MissingSeries(t *testing.T) {
	series := fullSeries(func(catalogue.Query) int { return 1 })

	_, err := NewRun(series[1:], time.Second)
	assert.ErrorIs(t, err, ErrMissingKey)
}
