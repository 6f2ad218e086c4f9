package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/deal-bench/internal/app/usecase"
	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect recorded sessions",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryShowCmd(a), newHistoryDeleteCmd(a), newHistoryExportCmd(a))
	return cmd
}

func (a *app) historyUseCase(cmd *cobra.Command) (*usecase.HistoryUseCase, error) {
	if !a.cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (history.enabled=false)")
	}
	repo, err := a.historyRepo(cmd.Context())
	if err != nil {
		return nil, err
	}
	return usecase.NewHistoryUseCase(repo), nil
}

func newHistoryListCmd(a *app) *cobra.Command {
	var filter history.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.historyUseCase(cmd)
			if err != nil {
				return err
			}
			records, err := uc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No sessions recorded."))
				return nil
			}
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%-26s  %-10s  %-9s  %-5s  %-12s  %s",
				"ID", "BACKEND", "STATE", "RUNS", "P50 TOTAL", "STARTED")))
			for _, r := range records {
				state := stateStyle(r.State).Render(fmt.Sprintf("%-9s", r.State))
				fmt.Fprintf(out, "%-26s  %-10s  %s  %-5s  %-12s  %s\n",
					r.ID, r.Backend, state,
					fmt.Sprintf("%d/%d", r.RunsCompleted, r.RunsRequested),
					r.TotalTimeP50.Round(time.Microsecond),
					r.StartTime.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Backend, "backend", "b", "", "only sessions of this backend")
	cmd.Flags().StringVar(&filter.State, "state", "", "only sessions in this state")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "maximum number of sessions (0 for all)")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.historyUseCase(cmd)
			if err != nil {
				return err
			}
			r, err := uc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sectionStyle.Render(strings.Join(recordLines(r), "\n")))
			return nil
		},
	}
}

func recordLines(r *history.Record) []string {
	lines := []string{
		titleStyle.Render("Session " + r.ID),
		field("Backend", r.Backend),
		field("State", stateStyle(r.State).Render(r.State)),
		field("Runs", fmt.Sprintf("%d/%d", r.RunsCompleted, r.RunsRequested)),
		field("Started", r.StartTime.Local().Format(time.DateTime)),
		field("Duration", r.Duration.Round(time.Millisecond).String()),
	}
	if r.Succeeded() {
		lines = append(lines,
			field("Queries per run", fmt.Sprintf("%d", r.QueriesPerRun)),
			field("Total time p50", r.TotalTimeP50.Round(time.Microsecond).String()),
			field("Total time p99", r.TotalTimeP99.Round(time.Microsecond).String()),
			field("Throughput p50", fmt.Sprintf("%.1f qps", r.ThroughputP50)),
			field("Throughput p99", fmt.Sprintf("%.1f qps", r.ThroughputP99)),
			field("Result file", r.ResultPath),
		)
	}
	if r.ErrorMessage != "" {
		lines = append(lines, field("Error", errorStyle.Render(r.ErrorMessage)))
	}
	return lines
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.historyUseCase(cmd)
			if err != nil {
				return err
			}
			if err := uc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var (
		format string
		dir    string
		filter history.Filter
	)

	cmd := &cobra.Command{
		Use:   "export [id...]",
		Short: "Export sessions to text or Markdown files",
		Long:  "export writes one file per session. Without IDs it exports every session matching the filter flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := usecase.ParseExportFormat(format)
			if err != nil {
				return err
			}
			uc, err := a.historyUseCase(cmd)
			if err != nil {
				return err
			}

			var records []*history.Record
			if len(args) == 0 {
				if records, err = uc.List(cmd.Context(), filter); err != nil {
					return err
				}
			}
			for _, id := range args {
				r, err := uc.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				records = append(records, r)
			}

			export := usecase.NewExportUseCase(dir)
			n, err := export.ExportAllRecords(cmd.Context(), records, f)
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Exported %d session(s) to %s", n, export.Dir())))
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "export-format", "f", "markdown", "export format (txt, markdown)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "./exports", "export directory")
	cmd.Flags().StringVarP(&filter.Backend, "backend", "b", "", "only sessions of this backend")
	cmd.Flags().StringVar(&filter.State, "state", "", "only sessions in this state")
	return cmd
}
