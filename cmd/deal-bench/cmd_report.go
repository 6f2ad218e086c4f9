package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/deal-bench/internal/app/usecase"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
)

type reportFlags struct {
	fileA, fileB       string
	nameA, nameB       string
	sessionA, sessionB string
}

func newReportCmd(a *app) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare two result files",
		Long: `report renders the comparison of two benchmark sessions. System A is the
baseline: the difference column is (B - A) / A.

Sessions are given either as result files (--a, --b) or as IDs of
completed sessions in the history (--session-a, --session-b).`,
		Example: `  deal-bench report --a surrealdb_bench_output.json --b mongodb_bench_output.json
  deal-bench report --session-a 01J... --session-b 01J... --format html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sideA, err := a.reportSide(cmd, f.fileA, f.nameA, f.sessionA)
			if err != nil {
				return fmt.Errorf("system A: %w", err)
			}
			sideB, err := a.reportSide(cmd, f.fileB, f.nameB, f.sessionB)
			if err != nil {
				return fmt.Errorf("system B: %w", err)
			}

			uc := usecase.NewReportUseCase()
			rpt, genErr := uc.Generate(cmd.Context(), sideA, sideB, a.cfg)
			if rpt == nil {
				return genErr
			}

			out := cmd.OutOrStdout()
			if a.cfg.Report.Preview && rpt.Format == report.FormatMarkdown {
				fmt.Fprint(out, renderMarkdown(string(rpt.Content)))
			}
			for _, err := range rpt.SectionErrors {
				fmt.Fprintln(out, warnStyle.Render("Section unavailable: "+err.Error()))
			}
			fmt.Fprintln(out, field("Report", okStyle.Render(rpt.FilePath)))
			return genErr
		},
	}

	cmd.Flags().StringVar(&f.fileA, "a", "", "result file of system A (baseline)")
	cmd.Flags().StringVar(&f.fileB, "b", "", "result file of system B")
	cmd.Flags().StringVar(&f.nameA, "name-a", "", "name of system A (default derived from the file name)")
	cmd.Flags().StringVar(&f.nameB, "name-b", "", "name of system B (default derived from the file name)")
	cmd.Flags().StringVar(&f.sessionA, "session-a", "", "history session ID of system A")
	cmd.Flags().StringVar(&f.sessionB, "session-b", "", "history session ID of system B")
	cmd.Flags().String("format", "", "report format (markdown, json, html)")
	cmd.Flags().StringP("output", "o", "", "report file (overrides report.output_path)")
	cmd.Flags().String("title", "", "report title")
	cmd.Flags().String("unit", "", "latency unit (ns, us, ms, s)")
	cmd.Flags().String("strategy", "", "percentile strategy (nearest-rank, interpolated)")
	cmd.Flags().Bool("charts", false, "append box plots")
	cmd.Flags().Bool("preview", false, "render the Markdown report in the terminal")
	cmd.MarkFlagsMutuallyExclusive("a", "session-a")
	cmd.MarkFlagsMutuallyExclusive("b", "session-b")
	cmd.MarkFlagsOneRequired("a", "session-a")
	cmd.MarkFlagsOneRequired("b", "session-b")
	return cmd
}

// reportSide loads one compared system from a result file or a history
// session.
func (a *app) reportSide(cmd *cobra.Command, file, name, sessionID string) (report.Side, error) {
	if sessionID == "" {
		if name == "" {
			name = systemName(file)
		}
		return usecase.ReadSide(usecase.ReportSource{Name: name, Path: file})
	}

	repo, err := a.historyRepo(cmd.Context())
	if err != nil {
		return report.Side{}, err
	}
	rec, results, err := usecase.NewHistoryUseCase(repo).Results(cmd.Context(), sessionID)
	if err != nil {
		return report.Side{}, err
	}
	if name == "" {
		name = connection.DatabaseType(rec.Backend).DisplayName()
	}
	return report.Side{Name: name, Results: results}, nil
}

// systemName derives a system name from a result file named
// <backend>_bench_output.json, falling back to the file's base name.
func systemName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix, _, _ := strings.Cut(base, "_")
	if t, err := connection.ParseDatabaseType(prefix); err == nil {
		return t.DisplayName()
	}
	return base
}
