// Package measure provides the timing primitive used by benchmark runs.
package measure

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidIterations is returned when an operation is timed fewer than once.
	ErrInvalidIterations = errors.New("iterations must be at least 1")
)

// Measurement is one recorded duration in nanoseconds.
type Measurement int64

// Duration converts the measurement to a time.Duration.
func (m Measurement) Duration() time.Duration {
	return time.Duration(m)
}

// Operation is a unit of work whose wall-clock cost is measured.
type Operation func(ctx context.Context) error

// Clock returns the current time. time.Now carries a monotonic reading.
type Clock func() time.Time

// Timer measures operations sequentially.
type Timer struct {
	now Clock
}

// NewTimer creates a timer backed by the monotonic wall clock.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// NewTimerWithClock creates a timer with a custom clock.
func NewTimerWithClock(clock Clock) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{now: clock}
}

// Time invokes op exactly iterations times, one after another, and returns
// the elapsed nanoseconds of each invocation in invocation order.
// The returned slice always has length iterations. An error from op aborts
// the loop and is returned unchanged in the chain; no partial series is returned.
func (t *Timer) Time(ctx context.Context, op Operation, iterations int) ([]Measurement, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}

	out := make([]Measurement, 0, iterations)
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := t.now()
		err := op(ctx)
		elapsed := t.now().Sub(start)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		if elapsed < 0 {
			elapsed = 0
		}
		out = append(out, Measurement(elapsed.Nanoseconds()))
	}

	return out, nil
}

// Series is the ordered list of measurements for one named query within a run.
type Series struct {
	Key          string
	Measurements []Measurement
}

// Total returns the sum of all measurements.
func (s Series) Total() Measurement {
	var sum Measurement
	for _, m := range s.Measurements {
		sum += m
	}
	return sum
}

// Int64s returns the raw nanosecond values.
func (s Series) Int64s() []int64 {
	out := make([]int64, len(s.Measurements))
	for i, m := range s.Measurements {
		out[i] = int64(m)
	}
	return out
}
