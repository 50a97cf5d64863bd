package main

import (
	"fmt"

	"github.com/cloudzeus/kimoncrm-sub005/common/database"
	"github.com/cloudzeus/kimoncrm-sub005/internal/migrations"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer database.Close(db)

		n, err := migrations.Up(db)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", zap.Int("count", n))
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer database.Close(db)

		n, err := migrations.Down(db, downSteps)
		if err != nil {
			return err
		}
		logger.Info("Migrations rolled back", zap.Int("count", n))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer database.Close(db)

		list, err := migrations.List(db)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range list {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%-8s %s\n", state, m.ID)
		}
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
