package main

import (
	"fmt"
	"os"

	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "zeeder",
		Short: "Multi-tenant dashboard backend for conversational voice agents",
		Long: `Backend for the voice-agent dashboard.

Users log in, list and configure agents hosted by the conversational-AI API;
admins manage companies, users, voice grants and agent ownership.

Available commands:
  serve         - Run the HTTP API
  migrate       - Create or update the database schema
  sync-voices   - Replace the local voice catalog with the upstream one
  create-admin  - Create an admin account`,
		SilenceUsage: true,
		Version:      version,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSyncVoicesCommand())
	root.AddCommand(newCreateAdminCommand())
	return root
}

// bootstrap loads and validates configuration and initializes the logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)
	return cfg, log, nil
}
