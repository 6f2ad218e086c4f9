package result

import (
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/measure"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
)

// Throughput returns queries per second over total. Seconds are rounded
// to one decimal first, falling back to the exact value when that rounds
// to zero, and the result is rounded to one decimal. A zero duration
// yields zero.
func Throughput(queries int, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	seconds := percentile.Round(total.Seconds(), 1)
	if seconds == 0 {
		seconds = total.Seconds()
	}
	return percentile.Round(float64(queries)/seconds, 1)
}

// NewRun builds the record of one run from the series of every catalogue
// operation and the run's wall time. Category durations are the sum of
// their operations; counts are the number of timed invocations.
func NewRun(series []measure.Series, wall time.Duration) (*RunRecord, error) {
	byKey := make(map[string]measure.Series, len(series))
	for _, s := range series {
		byKey[s.Key] = s
	}

	r := NewRunRecord()
	var read, write measure.Measurement
	var readCount, total int

	for _, info := range catalogue.Categories {
		var duration measure.Measurement
		count := 0
		for _, q := range catalogue.ByCategory(info.Category) {
			s, ok := byKey[q.ID.String()]
			if !ok || len(s.Measurements) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrMissingKey, q.ID)
			}
			r.SetDurations(s.Key, s.Int64s())
			duration += s.Total()
			count += len(s.Measurements)
		}

		r.Set(info.DurationKey, Scalar(float64(duration)))
		if info.CountKey != "" {
			r.Set(info.CountKey, Scalar(float64(count)))
		}
		if info.Write {
			write += duration
		} else {
			read += duration
			readCount += count
		}
		total += count

		if info.Category == catalogue.CategoryReadAggregation {
			r.Set(catalogue.ReadQueryCountKey, Scalar(float64(readCount)))
		}
	}

	totalTime := read + write
	r.Set(catalogue.TotalReadDuration, Scalar(float64(read)))
	r.Set(catalogue.TotalWriteDuration, Scalar(float64(write)))
	r.Set(catalogue.TotalTimeDuration, Scalar(float64(totalTime)))
	r.Set(catalogue.TotalQueriesCount, Scalar(float64(total)))
	r.Set(catalogue.TotalThroughputQPS, Scalar(Throughput(total, totalTime.Duration())))
	r.Set(catalogue.WallTimeDuration, Scalar(float64(wall.Nanoseconds())))
	return r, nil
}
