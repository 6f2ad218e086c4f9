package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/deal-bench/internal/app/repository"
	"github.com/whhaicheng/deal-bench/internal/app/usecase"
	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/arangodb"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/dry"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/mongodb"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/postgres"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/surrealdb"
	"github.com/whhaicheng/deal-bench/internal/infra/database"
	dbrepo "github.com/whhaicheng/deal-bench/internal/infra/database/repository"
	"github.com/whhaicheng/deal-bench/internal/infra/settings"
)

// flagKeys maps command flags to the configuration keys they override.
var flagKeys = map[string]string{
	"log-level":  "advanced.log_level",
	"runs":       "session.runs",
	"iterations": "session.iterations",
	"seed":       "session.seed",
	"output-dir": "session.output_dir",
	"format":     "report.format",
	"output":     "report.output_path",
	"title":      "report.title",
	"unit":       "report.unit",
	"strategy":   "report.strategy",
	"charts":     "report.include_charts",
	"preview":    "report.preview",
}

// app holds what the commands share once the configuration is loaded.
type app struct {
	configFile string
	envFiles   []string

	cfg        *config.Config
	configUsed string
	closers    []func() error
	history    repository.HistoryRepository
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "deal-bench",
		Short: "Benchmark SurrealDB, MongoDB and ArangoDB on one e-commerce workload",
		Long: `deal-bench runs a fixed catalogue of inserts, indexes, reads, updates,
deletes and transactions against a database, stores the timings of every
run in a result file and renders a comparison report of two result files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default ./deal-bench.yaml if present)")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "env files loaded before the environment is read")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newReportCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newPingCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration, applying the flags set on cmd, and
// starts logging.
func (a *app) load(cmd *cobra.Command) error {
	overrides := make(map[string]interface{})
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	loader, err := settings.NewLoader()
	if err != nil {
		return err
	}
	cfg, err := loader.Load(settings.Options{
		ConfigFile: a.configFile,
		EnvFiles:   a.envFiles,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.configUsed = loader.ConfigFileUsed()

	closeLog, err := setupLogging(cfg.Advanced.LogDir, cfg.Advanced.LogLevel, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeLog)
	slog.Debug("Configuration loaded", "file", a.configUsed, "command", cmd.CommandPath())
	return nil
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// registry registers every backend.
func (a *app) registry() *backend.Registry {
	reg := backend.NewRegistry()
	reg.Register(connection.DatabaseTypeSurrealDB, surrealdb.Factory)
	reg.Register(connection.DatabaseTypeMongoDB, mongodb.Factory)
	reg.Register(connection.DatabaseTypeArangoDB, arangodb.Factory)
	reg.Register(connection.DatabaseTypePostgreSQL, postgres.Factory)
	reg.Register(connection.DatabaseTypeDry, dry.Factory(dry.New()))
	return reg
}

// historyRepo opens the SQLite history, or an in-memory one when the
// history is disabled.
func (a *app) historyRepo(ctx context.Context) (repository.HistoryRepository, error) {
	if a.history != nil {
		return a.history, nil
	}
	if !a.cfg.History.Enabled {
		a.history = usecase.NewMemoryHistoryRepository()
		return a.history, nil
	}
	db, err := database.InitializeSQLite(ctx, a.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.history = dbrepo.NewSQLiteHistoryRepository(db)
	return a.history, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// Needs no configuration.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deal-bench %s\n", Version)
		},
	}
}
