package cmd

import (
	"github.com/YagooSRV/Azure-Partiel-2a3/database"
	"github.com/YagooSRV/Azure-Partiel-2a3/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the items table, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.ConnectToDB(cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close(db)

		logger.Info("running database migrations", "driver", cfg.DB.Driver)
		if err := migrate.Run(db); err != nil {
			return err
		}

		logger.Info("database migrated successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
