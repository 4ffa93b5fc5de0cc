package cli

import (
	"github.com/spf13/pflag"
)

// GlobalFlags are accepted by every finpal command
type GlobalFlags struct {
	ConfigPath string
	EnvFile    string
	DBPath     string
	Verbose    bool
}

// Bind registers the flags on a persistent flag set
func (f *GlobalFlags) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Config file (default config.yaml, falling back to environment)")
	fs.StringVar(&f.EnvFile, "env-file", "", "Load environment variables from this file (default .env if present)")
	fs.StringVar(&f.DBPath, "db", "", "SQLite database path (overrides config)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port int
}

// RulesApplyFlags holds the CLI flags for rules apply.
type RulesApplyFlags struct {
	Timeout string
}
