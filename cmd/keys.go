package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytpulse/ytpulse/internal/apikey"
	"github.com/ytpulse/ytpulse/internal/config"
)

// keysCmd shows the configured API key pool
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show API key pool status",
	Long:  `Display the configured YouTube API key pool and its rotation state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}

		if err := cfg.ValidateIngestion(); err != nil {
			return err
		}

		manager, err := apikey.NewManager(cfg.YouTube.APIKeys, cfg.YouTube.KeyUsageThreshold)
		if err != nil {
			return err
		}

		output, err := json.MarshalIndent(manager.Stats(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format stats: %w", err)
		}

		fmt.Println(string(output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
