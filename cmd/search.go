package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytpulse/ytpulse/internal/config"
	"github.com/ytpulse/ytpulse/internal/logger"
	"github.com/ytpulse/ytpulse/internal/repository/video"
	"github.com/ytpulse/ytpulse/internal/service/search"
)

// searchCmd queries the stored video collection
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored videos",
	Long: `Search the stored video collection with optional text, tag, channel and
date filters. Text matching is ranked full-text by default; --partial switches
to term-level OR substring matching over title and description.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		logger.SetLevel(cfg.LogLevel)

		pool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return err
		}
		defer config.CloseDatabasePool(pool)

		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		svc := search.NewService(video.NewRepository(pool))
		result, err := svc.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(output))
		return nil
	},
}

// paramsFromFlags collects search parameters from command flags
func paramsFromFlags(cmd *cobra.Command) (search.Params, error) {
	var params search.Params

	params.Search, _ = cmd.Flags().GetString("query")
	params.Partial, _ = cmd.Flags().GetBool("partial")
	params.ChannelID, _ = cmd.Flags().GetString("channel")
	params.Page, _ = cmd.Flags().GetInt("page")
	params.PageSize, _ = cmd.Flags().GetInt("limit")

	if tags, _ := cmd.Flags().GetString("tags"); tags != "" {
		params.Tags = splitList(tags)
	}
	if sortFields, _ := cmd.Flags().GetString("sort"); sortFields != "" {
		params.SortFields = splitList(sortFields)
	}
	if sortOrders, _ := cmd.Flags().GetString("order"); sortOrders != "" {
		params.SortOrders = splitList(sortOrders)
	}

	from, err := parseDateFlag(cmd, "from")
	if err != nil {
		return params, err
	}
	params.StartDate = from

	to, err := parseDateFlag(cmd, "to")
	if err != nil {
		return params, err
	}
	params.EndDate = to

	return params, nil
}

// splitList splits a comma-separated flag value, trimming whitespace
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// parseDateFlag parses a date flag as RFC 3339 or YYYY-MM-DD
func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid --%s value %q (expected RFC 3339 or YYYY-MM-DD)", name, raw)
}

func init() {
	searchCmd.Flags().StringP("query", "q", "", "free-text search query")
	searchCmd.Flags().Bool("partial", false, "use term-level OR substring matching instead of ranked full-text")
	searchCmd.Flags().String("tags", "", "comma-separated tags (record matches any)")
	searchCmd.Flags().String("channel", "", "exact channel ID")
	searchCmd.Flags().String("from", "", "publish time lower bound (inclusive)")
	searchCmd.Flags().String("to", "", "publish time upper bound (inclusive)")
	searchCmd.Flags().String("sort", "", "comma-separated sort fields")
	searchCmd.Flags().String("order", "", "comma-separated sort directions (asc/desc)")
	searchCmd.Flags().Int("page", 1, "page number")
	searchCmd.Flags().Int("limit", 10, "page size (1-100)")
	rootCmd.AddCommand(searchCmd)
}
