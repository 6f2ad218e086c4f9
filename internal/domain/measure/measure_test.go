package measure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock advances by the next step on every call.
func steppingClock(steps ...time.Duration) Clock {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	return func() time.Time {
		if i < len(steps) {
			base = base.Add(steps[i])
		}
		i++
		return base
	}
}

func TestTimer_Time(t *testing.T) {
	// start/end pairs: 0->100, +5 gap, 0->300
	clock := steppingClock(0, 100, 5, 300)
	timer := NewTimerWithClock(clock)

	calls := 0
	got, err := timer.Time(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []Measurement{100, 300}, got)
}

func TestTimer_Time_SingleIterationReturnsSlice(t *testing.T) {
	timer := NewTimer()

	got, err := timer.Time(context.Background(), func(ctx context.Context) error { return nil }, 1)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.GreaterOrEqual(t, int64(got[0]), int64(0))
}

func TestTimer_Time_InvalidIterations(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
	}{
		{"zero", 0},
		{"negative", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimer().Time(context.Background(), func(ctx context.Context) error { return nil }, tt.iterations)
			assert.ErrorIs(t, err, ErrInvalidIterations)
		})
	}
}

func TestTimer_Time_PropagatesError(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0

	got, err := NewTimer().Time(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}, 5)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.Equal(t, 2, calls, "no invocations after the failing one")
}

func TestTimer_Time_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTimer().Time(ctx, func(ctx context.Context) error { return nil }, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeries_Total(t *testing.T) {
	s := Series{Key: "q1", Measurements: []Measurement{10, 20, 30}}

	assert.Equal(t, Measurement(60), s.Total())
	assert.Equal(t, []int64{10, 20, 30}, s.Int64s())
	assert.Equal(t, 30*time.Nanosecond, s.Measurements[2].Duration())
}
