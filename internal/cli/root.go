// Package cli wires the finpal commands: the API server, schema
// migrations and rule maintenance.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/finpal-backend/internal/infrastructure/config"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// app is the state shared by commands once the root pre-run has loaded it
type app struct {
	flags  GlobalFlags
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the finpal command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "finpal",
		Short: "Personal finance backend with shared expenses and transaction rules",
		Long: `finpal serves the finance API and runs maintenance tasks against its database.

Example:
  finpal serve --port 8085
  finpal migrate --status
  finpal rules apply
  finpal rules stats`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr(), cmd.Name())
		},
	}
	a.flags.Bind(root.PersistentFlags())

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newMigrateCommand(a))
	root.AddCommand(newRulesCommand(a))
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) load(logOut io.Writer, system string) error {
	if err := config.LoadDotEnv(a.flags.EnvFile); err != nil {
		return err
	}

	if a.flags.ConfigPath != "" {
		cfg, err := config.Load(a.flags.ConfigPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		a.cfg = config.LoadOrEnv()
	}
	if a.flags.DBPath != "" {
		a.cfg.Storage.Driver = config.DriverSQLite
		a.cfg.Storage.DatabasePath = a.flags.DBPath
	}

	loggingCfg := a.cfg.Observability.Logging
	if a.flags.Verbose {
		loggingCfg.Level = "debug"
	}
	a.logger = logging.NewLoggerTo(logOut, loggingCfg).With("system", system)
	return nil
}

// openStore opens the configured database and brings the schema up to date
func (a *app) openStore(ctx context.Context) (*storage.Storage, error) {
	a.logger.Debug("opening database", "driver", a.cfg.Storage.Driver, "path", a.cfg.Storage.DatabasePath)
	return storage.Open(ctx, a.cfg.Storage, a.logger)
}
