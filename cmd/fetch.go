package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ytpulse/ytpulse/internal/apikey"
	"github.com/ytpulse/ytpulse/internal/config"
	"github.com/ytpulse/ytpulse/internal/logger"
	"github.com/ytpulse/ytpulse/internal/repository/video"
	"github.com/ytpulse/ytpulse/internal/service/ingest"
	"github.com/ytpulse/ytpulse/internal/service/youtube"
)

// fetchCmd runs a single fetch-and-save cycle
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch-and-save cycle",
	Long:  `Fetch newly published videos for the configured search query and save them to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		pipeline, pool, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer config.CloseDatabasePool(pool)

		saved, err := pipeline.Tick(ctx)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		fmt.Printf("Saved %d new video(s).\n", saved)
		return nil
	},
}

// watchCmd runs the scheduled fetch loop until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the periodic fetch scheduler",
	Long: `Run fetch-and-save cycles on the configured interval until interrupted.
Ticks never overlap; a firing that arrives while a tick is still running is
skipped and retried at the next interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}

		pipeline, pool, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer config.CloseDatabasePool(pool)

		scheduler := ingest.NewScheduler(pipeline, cfg.FetchInterval())
		scheduler.Run(ctx)
		return nil
	},
}

// buildPipeline wires config, database, key pool, API client and repository
// into an ingestion pipeline
func buildPipeline(ctx context.Context) (ingest.Pipeline, *pgxpool.Pool, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(cfg.LogLevel)

	if err := cfg.ValidateIngestion(); err != nil {
		return nil, nil, err
	}

	keys, err := apikey.NewManager(cfg.YouTube.APIKeys, cfg.YouTube.KeyUsageThreshold)
	if err != nil {
		return nil, nil, err
	}

	pool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	repo := video.NewRepository(pool)
	client := youtube.NewClient()

	pipeline := ingest.NewPipeline(client, keys, repo, ingest.Options{
		SearchQuery: cfg.YouTube.SearchQuery,
		Lookback:    cfg.Lookback(),
	})

	return pipeline, pool, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(watchCmd)
}
