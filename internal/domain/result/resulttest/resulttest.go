// Package resulttest builds complete result files for tests.
package resulttest

import (
	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
)

// Full returns a result file holding every catalogue key for runs runs.
// Run i stores (i+1)*scale nanoseconds for every duration key and
// 10*(i+1)/scale*1e6 for throughput.
func Full(runs int, scale float64) result.File {
	records := make([]*result.RunRecord, runs)
	for i := range records {
		r := result.NewRunRecord()
		ns := float64(i+1) * scale

		for _, q := range catalogue.Queries {
			r.Set(q.ID.String(), result.Scalar(ns))
		}
		for _, info := range catalogue.Categories {
			r.Set(info.DurationKey, result.Scalar(ns))
			if info.CountKey != "" {
				r.Set(info.CountKey, result.Scalar(float64(len(catalogue.ByCategory(info.Category)))))
			}
		}
		r.Set(catalogue.ReadQueryCountKey, result.Scalar(float64(catalogue.ReadQueryCount())))
		r.Set(catalogue.TotalReadDuration, result.Scalar(ns))
		r.Set(catalogue.TotalWriteDuration, result.Scalar(ns))
		r.Set(catalogue.TotalTimeDuration, result.Scalar(ns))
		r.Set(catalogue.WallTimeDuration, result.Scalar(ns))
		r.Set(catalogue.TotalQueriesCount, result.Scalar(float64(catalogue.TotalQueryCount())))
		r.Set(catalogue.TotalThroughputQPS, result.Scalar(10*float64(i+1)*1e6/scale))

		records[i] = r
	}
	return result.NewFile(records)
}

// Without returns a copy of f lacking keys.
func Without(f result.File, keys ...string) result.File {
	out := make(result.File, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
