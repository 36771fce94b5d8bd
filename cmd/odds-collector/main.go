// Package main provides the entry point for the odds feed collector.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wanwanbooboo/boatrace/internal/collector"
	"github.com/wanwanbooboo/boatrace/internal/config"
	"github.com/wanwanbooboo/boatrace/internal/database"
	"github.com/wanwanbooboo/boatrace/internal/logger"
	"github.com/wanwanbooboo/boatrace/internal/repository"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "odds-collector",
	Short: "Ingest odds snapshots into the append-only tick store",
	Long:  `Fetches market observations from the configured odds feed (polling or websocket stream) and appends them under the non-decreasing snapshot timestamp contract.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	var err error

	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.Collector.FeedURL == "" {
		return fmt.Errorf("collector.feed_url is required")
	}

	appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"mode":            cfg.Collector.Mode,
		"deadline_buffer": cfg.Collector.DeadlineBufferSeconds,
	}).Info("Odds collector starting")

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}

func run() error {
	ticks := repository.NewPostgresTickRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Collector.Mode {
	case "stream":
		coll := collector.NewCollector(nil, ticks, appLog)
		sub := collector.NewStreamSubscriber(cfg.Collector.FeedURL, coll, appLog)
		sub.Run(ctx)
	default:
		client := collector.NewFeedClient(
			collector.DefaultFeedClientConfig(cfg.Collector.FeedURL, cfg.Collector.APIKey, cfg.Collector.RateLimitPerSecond),
			appLog,
		)
		coll := collector.NewCollector(client, ticks, appLog)

		sched := collector.NewScheduler(coll, appLog)
		if err := sched.SchedulePolling(cfg.Collector.PollIntervalSeconds); err != nil {
			return err
		}
		sched.Start()
		<-ctx.Done()
		sched.Stop()
	}

	appLog.Info("Odds collector stopped")
	return nil
}
