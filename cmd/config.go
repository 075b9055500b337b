package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytpulse/ytpulse/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for ytpulse.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database and fetch settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("Please edit the database_url and youtube.api_keys in this file.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration file: %s\n\n", configPath)

		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}

		fmt.Printf("database_url: %s\n", cfg.DatabaseURL)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("youtube.api_keys: %d key(s) configured\n", len(cfg.YouTube.APIKeys))
		fmt.Printf("youtube.search_query: %s\n", cfg.YouTube.SearchQuery)
		fmt.Printf("youtube.fetch_interval_seconds: %d\n", cfg.YouTube.FetchIntervalSeconds)
		fmt.Printf("youtube.lookback_seconds: %d\n", cfg.YouTube.LookbackSeconds)
		fmt.Printf("youtube.key_usage_threshold: %d\n", cfg.YouTube.KeyUsageThreshold)

		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
