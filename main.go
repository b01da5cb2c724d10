package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/kasir-bot/config"
	"github.com/yeremiapane/kasir-bot/database"
	"github.com/yeremiapane/kasir-bot/utils"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kasir-bot",
		Short:         "Bot Telegram kasir VillaParfum",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Buat/ubah tabel lalu isi role default",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			utils.InitLogger(cfg.App.LogLevel)

			db, err := config.InitDB(&cfg.Database)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			if err := database.SeedRoles(db); err != nil {
				return err
			}
			utils.InfoLogger.Info("AutoMigrate completed.")
			return nil
		},
	}
}
