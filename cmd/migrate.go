package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ytpulse/ytpulse/internal/config"
)

// migrateCmd applies database migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  `Apply pending database migrations to the configured PostgreSQL database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("path")

		m, err := migrate.New("file://"+path, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize migrations: %w", err)
		}
		defer m.Close()

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("Database is already up to date.")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		fmt.Println("Migrations applied successfully.")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("path", "migrations", "path to the migrations directory")
	rootCmd.AddCommand(migrateCmd)
}
