package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/config"
	"github.com/meikuraledutech/quizgraph/postgres"
	"github.com/meikuraledutech/quizgraph/sqlite"
	"github.com/spf13/cobra"
)

const defaultSQLitePath = "quizgraph.db"

var rootCmd = &cobra.Command{
	Use:           "quizgraph",
	Short:         "Quiz tree storage and graph rendering",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (environment variables override it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(renderCmd)
}

// loadConfig reads the --config file and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, hclog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, cfg.Logger(os.Stderr), nil
}

// openStore connects to the configured database. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, log hclog.Logger) (quizgraph.Store, func(), error) {
	log = log.Named("store")

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		path := cfg.Database.URL
		if path == "" {
			path = defaultSQLitePath
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("opened sqlite", "path", path)
		return s, func() { s.Close() }, nil

	default:
		if cfg.Database.URL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is not set")
		}
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		log.Debug("connected to postgres")
		return postgres.New(pool), pool.Close, nil
	}
}
