package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/quizgraph/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if l, _ := cmd.Flags().GetString("listen"); l != "" {
			cfg.Listen = l
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := store.CreateSchema(ctx); err != nil {
				return err
			}
		}

		app := server.New(store, log, server.Options{
			Sizes:     cfg.Sizes(),
			Direction: cfg.Direction(),
		})

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Error("shutdown", "error", err)
			}
		}()

		log.Info("listening", "addr", cfg.Listen, "driver", cfg.Database.Driver)
		return app.Listen(cfg.Listen, fiber.ListenConfig{DisableStartupMessage: true})
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("migrate", false, "Create the schema before serving")
}
