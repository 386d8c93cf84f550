package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tables and staff accounts from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(services.SystemClock())
		if err != nil {
			return err
		}
		defer a.close()

		path := seedFile
		if path == "" {
			path = a.cfg.ConfigFile
		}
		if path == "" {
			return errors.New("no seed file: pass --file or set CONFIG_FILE")
		}
		return seedFromFile(cmd.Context(), a, path)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (defaults to CONFIG_FILE)")
}

// seedFromFile adds the listed tables when the inventory is still empty and
// creates missing staff accounts. Running it twice changes nothing.
func seedFromFile(ctx context.Context, a *app, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	seed, err := config.LoadSeedFile(path)
	if err != nil {
		return err
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.Table{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count tables: %w", err)
	}
	if count == 0 {
		for _, t := range seed.Tables {
			if _, err := a.svcs.Tables.Create(ctx, t.Capacity); err != nil {
				return err
			}
		}
		utils.InfoLogger.Infof("Seeded %d table(s)", len(seed.Tables))
	}

	for _, staff := range seed.Staff {
		created, err := a.svcs.Accounts.EnsureStaff(ctx, staff)
		if err != nil {
			return fmt.Errorf("seed staff %q: %w", staff.Username, err)
		}
		if created {
			utils.InfoLogger.Infof("Created staff account %s", staff.Username)
		}
	}
	return nil
}
