package main

import (
	"fmt"
	"os"

	"github.com/cloudzeus/kimoncrm-sub005/common/logger"
	"github.com/cloudzeus/kimoncrm-sub005/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "kimoncrm"

var configFile string

// rootCmd is the kimoncrm CLI.
var rootCmd = &cobra.Command{
	Use:   "kimoncrm",
	Short: "Kimon CRM and site survey backend",
	Long: `kimoncrm serves the CRM and site survey API and carries the
maintenance commands used around it.

Available subcommands:
  serve      - Run the HTTP API
  migrate    - Apply or roll back database migrations
  seed-admin - Create or update an ADMIN account
  bom        - Write a survey's bill of materials to an xlsx file`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (or set CONFIG_FILE env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(bomCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and builds the logger every subcommand uses.
func loadConfig() (*config.Config, *zap.Logger, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
