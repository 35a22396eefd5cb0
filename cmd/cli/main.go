package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/cmd/cli/commands"
	"github.com/jakechorley/shift-scheduler/internal/config"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
	"github.com/jakechorley/shift-scheduler/pkg/db"
	"github.com/jakechorley/shift-scheduler/pkg/postgres"
	"github.com/jakechorley/shift-scheduler/pkg/utils/logging"
)

var env string

// closeLogger flushes and closes the log file opened by initApp
var closeLogger = func() error { return nil }

func main() {
	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Shift Scheduler CLI - Build weekly shift schedules",
		Long:  `A CLI tool for assigning employees to weekly shifts from their availability and staffing requirements.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				if err := app.Database.Close(); err != nil {
					app.Logger.Warn("Failed to close database", zap.Error(err))
				}
			}
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		},
		SilenceUsage: true,
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects scheduler_config.<env>.yaml)")

	rootCmd.AddCommand(commands.ScheduleWeekCmd(app))
	rootCmd.AddCommand(commands.ViewScheduleCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads config and sets up the logger, database and week locks
func initApp(app *commands.AppContext) error {
	var err error
	app.Ctx = context.Background()

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, cleanup, err := logging.InitLogger(env, app.Cfg.Logging.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger, closeLogger = logger, cleanup
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Connecting to database", zap.String("driver", app.Cfg.Database.Driver))
	app.Database, err = openDatabase(app.Ctx, app.Cfg.Database, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Logger.Debug("Database initialized successfully")

	app.Locks = services.NewWeekLocks()

	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Database, error) {
	switch cfg.Driver {
	case "postgres":
		pg, err := postgres.NewDB(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		store, err := db.Open(cfg.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
