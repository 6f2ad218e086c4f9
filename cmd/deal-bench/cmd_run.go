package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/deal-bench/internal/app/usecase"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/execution"
	"github.com/whhaicheng/deal-bench/internal/infra/metrics"
)

func newRunCmd(a *app) *cobra.Command {
	var backendName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark session against one backend",
		Example: `  deal-bench run --backend surrealdb
  deal-bench run --backend mongodb --runs 3 --output-dir results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := connection.ParseDatabaseType(backendName)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := a.historyRepo(ctx)
			if err != nil {
				return err
			}
			var collectors *metrics.Collectors
			if a.cfg.Metrics.Enabled {
				collectors = metrics.New()
			}

			uc := usecase.NewBenchmarkUseCase(a.registry(), repo, collectors)
			session, err := uc.Run(ctx, a.cfg, t)
			if session != nil {
				printSession(cmd, session)
			}
			return err
		},
	}

	names := make([]string, len(connection.DatabaseTypes))
	for i, t := range connection.DatabaseTypes {
		names[i] = t.String()
	}
	cmd.Flags().StringVarP(&backendName, "backend", "b", "", "backend to benchmark ("+strings.Join(names, ", ")+")")
	cmd.Flags().Int("runs", 0, "number of runs (overrides session.runs)")
	cmd.Flags().Int("iterations", 0, "timed executions of every read per run (overrides session.iterations)")
	cmd.Flags().Uint64("seed", 0, "dataset seed (overrides session.seed)")
	cmd.Flags().String("output-dir", "", "directory of the result file (overrides session.output_dir)")
	_ = cmd.MarkFlagRequired("backend")
	return cmd
}

func printSession(cmd *cobra.Command, s *execution.Session) {
	out := cmd.OutOrStdout()
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s session %s", s.Backend.DisplayName(), s.ID)),
		field("State", stateStyle(s.State.String()).Render(s.State.String())),
		field("Runs", fmt.Sprintf("%d/%d", s.RunsCompleted, s.RunsRequested)),
	}
	if s.Duration != nil {
		lines = append(lines, field("Duration", s.Duration.Round(time.Millisecond).String()))
	}
	if sum := s.Summary; sum != nil {
		lines = append(lines,
			field("Queries per run", fmt.Sprintf("%d", sum.QueriesPerRun)),
			field("Total time p50", sum.TotalTimeP50.Round(time.Microsecond).String()),
			field("Total time p99", sum.TotalTimeP99.Round(time.Microsecond).String()),
			field("Throughput p50", fmt.Sprintf("%.1f qps", sum.ThroughputP50)),
			field("Throughput p99", fmt.Sprintf("%.1f qps", sum.ThroughputP99)),
		)
	}
	if s.ResultPath != "" {
		lines = append(lines, field("Result file", s.ResultPath))
	}
	if s.ErrorMessage != "" {
		lines = append(lines, field("Error", errorStyle.Render(s.ErrorMessage)))
	}
	fmt.Fprintln(out, sectionStyle.Render(strings.Join(lines, "\n")))
}
