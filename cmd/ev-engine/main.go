// Package main provides the entry point for the EV pricing engine.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wanwanbooboo/boatrace/internal/api"
	"github.com/wanwanbooboo/boatrace/internal/cache"
	"github.com/wanwanbooboo/boatrace/internal/config"
	"github.com/wanwanbooboo/boatrace/internal/database"
	"github.com/wanwanbooboo/boatrace/internal/logger"
	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/pricing"
	"github.com/wanwanbooboo/boatrace/internal/repository"
	"github.com/wanwanbooboo/boatrace/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(migrateCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ev-engine",
	Short: "Price pari-mutuel race markets and record order intents",
	Long:  `Serves the pricing API: resolves odds snapshots, blends probabilities, selects EV-positive candidates and records idempotent order intents.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd.Context()); err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema bootstrap and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
		appLog.Info("Schema bootstrap applied")
		return nil
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

	// Load AWS secrets if enabled
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

	appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
		"order_mode":  cfg.Engine.OrderMode,
	}).Info("EV engine starting")

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appLog.Info("Database connection established")

	return nil
}

func runServer() error {
	var ticks repository.TickRepository = repository.NewPostgresTickRepository(db)
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.MarketTTLSeconds) * time.Second
		ticks = cache.NewCachedTickRepository(ticks, ttl, appLog)
	}
	orders := repository.NewPostgresOrderRepository(db)

	model := pricing.NewFavoriteWeightedModel()
	stake := pricing.NewStakeStrategy(cfg.Engine.StakePolicy, cfg.Engine.UnitStake, cfg.Engine.MaxStake)

	pricingSvc := service.NewPricingService(ticks, orders, model, service.PricingConfig{
		EVMin: cfg.Engine.EVMin,
		Alpha: cfg.Engine.Alpha,
		Stake: stake,
		Mode:  models.ExecutionMode(cfg.Engine.OrderMode),
	}, appLog)

	server := api.NewServer(pricingSvc, db, cfg, appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		return err
	}

	appLog.Info("EV engine stopped")
	return nil
}
