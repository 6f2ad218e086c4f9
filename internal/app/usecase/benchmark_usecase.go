// Package usecase provides benchmark session, report and history business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/whhaicheng/deal-bench/internal/app/repository"
	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/domain/execution"
	"github.com/whhaicheng/deal-bench/internal/domain/history"
	"github.com/whhaicheng/deal-bench/internal/domain/measure"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
	"github.com/whhaicheng/deal-bench/internal/infra/metrics"
)

var (
	// ErrPreCheckFailed is returned when a session cannot start.
	ErrPreCheckFailed = errors.New("pre-check failed")

	// ErrExecutionFailed is returned when a run aborts.
	ErrExecutionFailed = errors.New("execution failed")
)

// BenchmarkUseCase runs benchmark sessions.
type BenchmarkUseCase struct {
	registry *backend.Registry
	history  repository.HistoryRepository
	metrics  *metrics.Collectors
	timer    *measure.Timer
	now      measure.Clock
}

// NewBenchmarkUseCase creates a new benchmark use case. history and
// collectors may be nil.
func NewBenchmarkUseCase(
	registry *backend.Registry,
	history repository.HistoryRepository,
	collectors *metrics.Collectors,
) *BenchmarkUseCase {
	return &BenchmarkUseCase{
		registry: registry,
		history:  history,
		metrics:  collectors,
		timer:    measure.NewTimer(),
		now:      time.Now,
	}
}

// SetClock replaces the clock of the timer and the session timestamps.
func (uc *BenchmarkUseCase) SetClock(clock measure.Clock) {
	uc.now = clock
	uc.timer = measure.NewTimerWithClock(clock)
}

// Run executes cfg.Session.Runs sequential runs of the catalogue against
// one backend and writes the result file. Any backend error aborts the
// session; the result file is then not written. The session is returned
// in its terminal state together with the error.
func (uc *BenchmarkUseCase) Run(ctx context.Context, cfg *config.Config, t connection.DatabaseType) (*execution.Session, error) {
	if err := uc.preCheck(cfg, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreCheckFailed, err)
	}
	conn, err := cfg.Backends.Get(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreCheckFailed, err)
	}

	if cfg.Advanced.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Advanced.Timeout)*time.Minute)
		defer cancel()
	}

	now := uc.now()
	session := execution.NewSession(
		ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		t, cfg.Session.Runs, now,
	)
	if err := session.Start(now); err != nil {
		return nil, err
	}
	log := slog.With("session", session.ID, "backend", t.String())
	log.Info("Session started", "runs", cfg.Session.Runs, "iterations", cfg.Session.Iterations)

	workload, err := uc.workload(cfg)
	if err != nil {
		return uc.fail(ctx, cfg, session, err)
	}

	runs := make([]*result.RunRecord, 0, cfg.Session.Runs)
	for i := 1; i <= cfg.Session.Runs; i++ {
		if i > 1 {
			if err := session.SetState(execution.StatePreparing); err != nil {
				return uc.fail(ctx, cfg, session, err)
			}
		}

		record, err := uc.runOnce(ctx, cfg, session, conn, workload, i)
		if uc.metrics != nil {
			uc.metrics.RunFinished(t.String(), err)
		}
		if err != nil {
			log.Error("Run failed", "run", i, "error", err)
			return uc.fail(ctx, cfg, session, fmt.Errorf("%w: run %d: %w", ErrExecutionFailed, i, err))
		}

		runs = append(runs, record)
		session.RunsCompleted = i
		total, _ := record.Get(catalogue.TotalTimeDuration)
		log.Info("Run completed", "run", i, "duration_ns", int64(total.Numbers[0]))
	}

	file := result.NewFile(runs)
	path := cfg.Session.ResultPath(t)
	if err := writeResultFile(path, file); err != nil {
		return uc.fail(ctx, cfg, session, err)
	}
	session.ResultPath = path

	summary, err := summarize(file, cfg.Report.Strategy)
	if err != nil {
		return uc.fail(ctx, cfg, session, err)
	}
	session.Summary = summary

	if err := session.Finish(nil, uc.now()); err != nil {
		return session, err
	}
	if uc.metrics != nil {
		uc.metrics.SessionCompleted(t.String(), summary.ThroughputP99, summary.TotalTimeP50)
	}
	uc.record(ctx, cfg, session)

	log.Info("Session completed",
		"result_path", path,
		"total_time_p50", summary.TotalTimeP50,
		"throughput_p99", summary.ThroughputP99)
	return session, nil
}

func (uc *BenchmarkUseCase) preCheck(cfg *config.Config, t connection.DatabaseType) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if err := cfg.Session.Validate(); err != nil {
		return err
	}
	if err := cfg.Dataset.Validate(); err != nil {
		return err
	}
	if _, err := percentile.ParseStrategy(cfg.Report.Strategy); err != nil {
		return err
	}
	return cfg.Backends.Validate(t)
}

// workload generates the dataset once. Every run uses the same seed, so
// regenerating it per run would yield identical records.
func (uc *BenchmarkUseCase) workload(cfg *config.Config) (*backend.Workload, error) {
	gen, err := dataset.NewGenerator(cfg.Dataset, cfg.Session.Seed)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	d, err := gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	f, err := dataset.NewFixtures(d, cfg.Session.Seed)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	return &backend.Workload{Dataset: d, Fixtures: f}, nil
}

// runOnce connects, resets the schema and times the whole catalogue.
func (uc *BenchmarkUseCase) runOnce(
	ctx context.Context,
	cfg *config.Config,
	session *execution.Session,
	conn connection.Connection,
	w *backend.Workload,
	run int,
) (*result.RunRecord, error) {
	b, err := uc.registry.New(session.Backend, conn)
	if err != nil {
		return nil, err
	}
	if err := b.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := b.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to close backend", "backend", session.Backend.String(), "error", err)
		}
	}()

	if err := b.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	if err := session.SetState(execution.StateRunning); err != nil {
		return nil, err
	}

	start := uc.now()
	series := make([]measure.Series, 0, len(catalogue.Queries))
	for _, q := range catalogue.Queries {
		info, _ := catalogue.CategoryOf(q.Category)
		iterations := 1
		if !info.Write {
			iterations = cfg.Session.Iterations
		}

		ms, err := uc.timer.Time(ctx, func(ctx context.Context) error {
			return b.Execute(ctx, q, w)
		}, iterations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.ID, err)
		}

		s := measure.Series{Key: q.ID.String(), Measurements: ms}
		series = append(series, s)
		if uc.metrics != nil {
			for _, m := range ms {
				uc.metrics.ObserveQuery(session.Backend.String(), q.ID.String(), string(q.Category), m.Duration())
			}
		}
		slog.Debug("Query timed",
			"backend", session.Backend.String(),
			"run", run,
			"query", q.ID.String(),
			"duration_ns", int64(s.Total()))
	}

	return result.NewRun(series, uc.now().Sub(start))
}

// fail finishes the session with err and records it.
func (uc *BenchmarkUseCase) fail(ctx context.Context, cfg *config.Config, session *execution.Session, err error) (*execution.Session, error) {
	if finishErr := session.Finish(err, uc.now()); finishErr != nil {
		slog.Warn("Failed to finish session", "session", session.ID, "error", finishErr)
	}
	uc.record(ctx, cfg, session)
	return session, err
}

// record stores the session in the history and exports the metrics.
// Neither failure changes the outcome of the session.
func (uc *BenchmarkUseCase) record(ctx context.Context, cfg *config.Config, session *execution.Session) {
	if uc.history != nil {
		rec := history.FromSession(session)
		if err := uc.history.Save(context.WithoutCancel(ctx), rec); err != nil {
			slog.Warn("Failed to save history", "session", session.ID, "error", err)
		}
	}
	if uc.metrics != nil && cfg.Metrics.TextfilePath != "" {
		if err := uc.metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			slog.Warn("Failed to write metrics textfile", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}
}

func writeResultFile(path string, file result.File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := file.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// summarize derives the headline figures of a session from its result file.
func summarize(file result.File, strategy string) (*execution.Summary, error) {
	s, err := percentile.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}

	totals, err := file.Int64s(catalogue.TotalTimeDuration)
	if err != nil {
		return nil, err
	}
	latency, err := percentile.Summarize(totals, percentile.Options{Unit: percentile.Nanoseconds, Strategy: s})
	if err != nil {
		return nil, err
	}

	qps, err := file.Float64s(catalogue.TotalThroughputQPS)
	if err != nil {
		return nil, err
	}
	throughput, err := percentile.SummarizeThroughput(qps, s)
	if err != nil {
		return nil, err
	}

	counts, err := file.First(catalogue.TotalQueriesCount)
	if err != nil {
		return nil, err
	}

	p50, _ := latency.Get("p50")
	p99, _ := latency.Get("p99")
	tp50, _ := throughput.Get("p50")
	tp99, _ := throughput.Get("p99")
	return &execution.Summary{
		TotalTimeP50:  time.Duration(p50),
		TotalTimeP99:  time.Duration(p99),
		ThroughputP50: tp50,
		ThroughputP99: tp99,
		QueriesPerRun: int(counts[0]),
		TotalTimesNs:  totals,
	}, nil
}
