// Package metrics exposes benchmark sessions as Prometheus collectors.
// A session is a batch job, so metrics are exported to a node_exporter
// textfile rather than served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes of RunsTotal.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Collectors are the session collectors registered on one registry.
type Collectors struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	throughput    *prometheus.GaugeVec
	totalTime     *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deal_bench_query_duration_seconds",
			Help:    "Duration of one timed catalogue operation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"backend", "query", "category"}),

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deal_bench_runs_total",
			Help: "Catalogue runs by outcome",
		}, []string{"backend", "status"}),

		throughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "deal_bench_session_throughput_qps",
			Help: "P99 throughput of the last completed session",
		}, []string{"backend"}),

		totalTime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "deal_bench_session_total_time_p50_seconds",
			Help: "P50 total time per run of the last completed session",
		}, []string{"backend"}),
	}
}

// ObserveQuery records one measurement of a query.
func (c *Collectors) ObserveQuery(backend, query, category string, d time.Duration) {
	c.queryDuration.WithLabelValues(backend, query, category).Observe(d.Seconds())
}

// RunFinished counts one run.
func (c *Collectors) RunFinished(backend string, err error) {
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	c.runsTotal.WithLabelValues(backend, status).Inc()
}

// SessionCompleted sets the headline gauges of a completed session.
func (c *Collectors) SessionCompleted(backend string, throughputP99 float64, totalTimeP50 time.Duration) {
	c.throughput.WithLabelValues(backend).Set(throughputP99)
	c.totalTime.WithLabelValues(backend).Set(totalTimeP50.Seconds())
}

// Gatherer returns the registry.
func (c *Collectors) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes every collector to path in text exposition format.
func (c *Collectors) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
