package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sampad/internal/platform/config"
	"sampad/internal/platform/database"
	"sampad/internal/platform/httpserver"
	"sampad/internal/platform/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the outbox relay",
	RunE:  runServe,
}

var serveMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving (postgres and sqlite)")
	rootCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving (postgres and sqlite)")
}

// runServe wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing sampad",
		"addr", cfg.Addr,
		"storage", cfg.Storage.Backend,
		"kafka", cfg.Kafka.Enabled(),
		"antiforgery", cfg.AntiForgery.Enabled,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveMigrate && cfg.Storage.Backend != config.BackendMemory {
		if err := database.MigrateUp(ctx, databaseConfig(cfg.Storage)); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := a.close(shutdownCtx); err != nil {
			log.Error("failed to release resources", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, a.handler), nil, cfg.ShutdownTimeout, log)
	})
	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Run(gctx)
		})
	}
	if a.redis != nil {
		g.Go(func() error {
			return a.redis.RunPoolStats(gctx, redisStatsInterval)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
