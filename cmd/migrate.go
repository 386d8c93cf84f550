package cmd

import (
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		autoMigrate = false
		a, err := bootstrap(services.SystemClock())
		if err != nil {
			return err
		}
		defer a.close()

		if err := models.AutoMigrate(a.db); err != nil {
			return err
		}
		utils.InfoLogger.Infof("Migrated %d tables", len(models.All()))
		return nil
	},
}
