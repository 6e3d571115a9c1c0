package main

import (
	"carpinteria_backend/database"
	"carpinteria_backend/internal/app"
	"carpinteria_backend/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Создать или обновить схему БД",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Database.AutoMigrate = false

		db, err := app.Bootstrap(cfg)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Migrations applied", "tables", len(database.Models()))
		return nil
	},
}
