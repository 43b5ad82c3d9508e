package main

import (
	"fmt"

	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/pkg/database"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.DemoMode {
				return fmt.Errorf("migrate needs a database, unset DEMO_MODE")
			}

			db, err := database.Open(&cfg.DB, log)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("Database schema is up to date")
			return nil
		},
	}
}

func newSyncVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-voices",
		Short: "Replace the local voice catalog with the upstream one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			count, err := a.voices.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d voices\n", count)
			return nil
		},
	}
}

const (
	usernameFlag = "username"
	emailFlag    = "email"
	passwordFlag = "password"
)

var adminFlags = map[string]cobraflags.Flag{
	usernameFlag: &cobraflags.StringFlag{
		Name:  usernameFlag,
		Value: "",
		Usage: "Username of the new admin (required)",
	},
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email of the new admin (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password of the new admin (required, at least 6 characters)",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Create an admin account in the database.

Examples:
  zeeder create-admin --username ops --email ops@example.com --password s3cret!`,
		RunE: createAdminCommand,
	}
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}

func createAdminCommand(cmd *cobra.Command, _ []string) error {
	username := adminFlags[usernameFlag].GetString()
	email := adminFlags[emailFlag].GetString()
	password := adminFlags[passwordFlag].GetString()
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("--username, --email and --password are required")
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.DemoMode {
		return fmt.Errorf("create-admin needs a database, unset DEMO_MODE")
	}

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	user, err := a.directory.CreateUser(cmd.Context(), service.CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return err
	}

	log.Info("Admin account created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return nil
}
