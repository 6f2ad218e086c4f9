package comparison

import (
	"fmt"
	"math"
)

// RunMetricStats describes one metric across N runs.
type RunMetricStats struct {
	N      int       `json:"n"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Values []float64 `json:"values,omitempty"`
}

// IsValid checks if the stats are valid (N > 0).
func (m *RunMetricStats) IsValid() bool {
	return m != nil && m.N > 0
}

// CV returns the coefficient of variation in percent.
func (m *RunMetricStats) CV() float64 {
	return CalculateCV(m.Mean, m.StdDev)
}

// CalculateRunMetricStats calculates min, max, mean and sample standard deviation.
func CalculateRunMetricStats(values []float64) RunMetricStats {
	n := len(values)
	if n == 0 {
		return RunMetricStats{}
	}

	stats := RunMetricStats{
		N:      n,
		Values: values,
		Min:    values[0],
		Max:    values[0],
	}

	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(n)

	// sample stddev, n-1
	if n > 1 {
		var varianceSum float64
		for _, v := range values {
			diff := v - stats.Mean
			varianceSum += diff * diff
		}
		stats.StdDev = math.Sqrt(varianceSum / float64(n-1))
	}

	return stats
}

// CalculateCV calculates the Coefficient of Variation (CV%).
// CV = (StdDev / Mean) × 100
func CalculateCV(mean, stddev float64) float64 {
	if mean == 0 {
		return 0
	}
	return (stddev / mean) * 100
}

// CalculateDelta calculates the change between two values.
// Returns absolute delta and percentage change.
func CalculateDelta(current, previous float64) (delta float64, pctChange float64) {
	delta = current - previous
	if previous == 0 {
		pctChange = 0
	} else {
		pctChange = (delta / previous) * 100
	}
	return
}

// CalculateConfidenceInterval calculates the 95% confidence interval for the mean.
func CalculateConfidenceInterval(stats RunMetricStats) (lower, upper float64) {
	if !stats.IsValid() || stats.N < 2 {
		return stats.Mean, stats.Mean
	}

	// 95% CI = mean ± 1.96 * (stddev / sqrt(n))
	margin := 1.96 * (stats.StdDev / math.Sqrt(float64(stats.N)))
	return stats.Mean - margin, stats.Mean + margin
}

// FormatMeanStdDev formats mean and stddev as "mean ± stddev".
func FormatMeanStdDev(stats RunMetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f", stats.Mean)
	}
	return fmt.Sprintf("%.2f ± %.2f", stats.Mean, stats.StdDev)
}

// FormatMinMax formats min and max as "min .. max".
func FormatMinMax(stats RunMetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f", stats.Min)
	}
	return fmt.Sprintf("%.2f .. %.2f", stats.Min, stats.Max)
}
