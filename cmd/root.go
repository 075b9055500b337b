package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for ytpulse
var rootCmd = &cobra.Command{
	Use:   "ytpulse",
	Short: "Periodic YouTube metadata ingestion and search",
	Long: `ytpulse periodically fetches newly published YouTube videos for a
configured search query using a rotating pool of API keys, stores them in
PostgreSQL with deduplication by video ID, and serves filtered, sorted,
paginated searches over the stored collection.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
