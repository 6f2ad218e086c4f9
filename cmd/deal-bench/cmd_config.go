package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/deal-bench/internal/app/usecase"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := json.MarshalIndent(a.cfg, "", "  ")
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.configUsed != "" {
					fmt.Fprintln(out, mutedStyle.Render("# "+a.configUsed))
				}
				fmt.Fprintln(out, string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration and every backend's parameters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, okStyle.Render("Configuration OK"))

				var invalid int
				for _, info := range usecase.NewConnectionUseCase(a.registry()).Describe(a.cfg) {
					status := okStyle.Render("ok")
					if info.Err != nil {
						invalid++
						status = errorStyle.Render(info.Err.Error())
					}
					fmt.Fprintln(out, field(info.Type.DisplayName(), status+" "+mutedStyle.Render(info.Connection)))
				}
				if invalid > 0 {
					return fmt.Errorf("%d backend(s) misconfigured", invalid)
				}
				return nil
			},
		},
	)
	return cmd
}

func newPingCmd(a *app) *cobra.Command {
	var backends []string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to one or more backends",
		Example: `  deal-bench ping --backend surrealdb --backend mongodb`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := usecase.NewConnectionUseCase(a.registry())
			out := cmd.OutOrStdout()

			var failed []string
			for _, name := range backends {
				t, err := connection.ParseDatabaseType(name)
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				res, err := uc.TestConnection(ctx, a.cfg, t)
				cancel()
				if err != nil {
					return err
				}
				if !res.Success {
					failed = append(failed, t.String())
					fmt.Fprintln(out, field(t.DisplayName(), errorStyle.Render(res.Error)))
					continue
				}
				fmt.Fprintln(out, field(t.DisplayName(),
					okStyle.Render(fmt.Sprintf("ok %dms", res.LatencyMs))+" "+mutedStyle.Render(res.DatabaseVersion)))
			}
			if len(failed) > 0 {
				return fmt.Errorf("connection failed: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&backends, "backend", "b", nil, "backend to test (repeatable)")
	_ = cmd.MarkFlagRequired("backend")
	return cmd
}
