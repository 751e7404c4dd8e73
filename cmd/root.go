package cmd

import (
	"log/slog"

	"github.com/YagooSRV/Azure-Partiel-2a3/config"
	"github.com/spf13/cobra"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "items-api",
	Short: "HTTP CRUD API over a single table of named items",
	Long: `items-api serves list, get, create, update and delete endpoints for
named items stored in SQL Server, PostgreSQL or SQLite.

Running it without a subcommand is the same as "items-api serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvVars()
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().Int("port", 8080, "Port to listen on")

	for key, name := range map[string]string{"config_file": "config", "port": "port"} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	logger := config.NewLogger(cfg.Log.Level, cfg.Log.Format, nil)
	if cfg.UsesPlaceholderDSN() {
		logger.Warn("no database connection string configured, using placeholder",
			"driver", cfg.DB.Driver)
	}
	return cfg, logger, nil
}
