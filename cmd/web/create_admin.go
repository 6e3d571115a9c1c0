package main

import (
	"errors"
	"fmt"

	"carpinteria_backend/internal/app"

	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Создать администратора",
	Long: `Создает пользователя с ролью admin. Если пользователь с таким email
уже есть, ничего не меняет. Без флагов берет FIRST_ADMIN_* из конфига.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if adminEmail == "" {
			adminEmail = cfg.FirstAdminEmail
		}
		if adminPassword == "" {
			adminPassword = cfg.FirstAdminPassword
		}
		if adminName == "" {
			adminName = cfg.FirstAdminName
		}
		if adminEmail == "" || adminPassword == "" {
			return errors.New("email and password are required (--email/--password or FIRST_ADMIN_*)")
		}

		db, err := app.Bootstrap(cfg)
		if err != nil {
			return err
		}
		created, err := app.SeedFirstAdmin(cmd.Context(), db, adminEmail, adminPassword, adminName)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", adminEmail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists, nothing to do\n", adminEmail)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email администратора")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "пароль (не короче 8 символов)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "имя")
}
