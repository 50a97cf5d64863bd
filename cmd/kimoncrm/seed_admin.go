package main

import (
	"fmt"
	"os"

	"github.com/cloudzeus/kimoncrm-sub005/common/database"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/spf13/cobra"
)

var (
	seedEmail    string
	seedName     string
	seedPassword string
)

// seedAdminCmd creates or updates an ADMIN account
var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create or update an ADMIN account",
	Long: `Create the ADMIN account with the given email, or reset its name,
role and password when it already exists.

The password can be passed with --password or the SEED_ADMIN_PASSWORD env.`,
	RunE: runSeedAdmin,
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "Admin email (required)")
	seedAdminCmd.Flags().StringVar(&seedName, "name", "Administrator", "Display name")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "Password (or SEED_ADMIN_PASSWORD env)")
	_ = seedAdminCmd.MarkFlagRequired("email")
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	password := seedPassword
	if password == "" {
		password = os.Getenv("SEED_ADMIN_PASSWORD")
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.Close(db)

	users := service.NewUserService(repository.NewPostgresUsersRepository(db), logger)
	u, err := users.SeedAdmin(cmd.Context(), service.SeedAdminRequest{
		Email:    seedEmail,
		Name:     seedName,
		Password: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %s)\n", u.Email, u.ID)
	return nil
}
