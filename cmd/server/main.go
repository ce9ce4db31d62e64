package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/htrskmiku/solabot/internal/config"
	"github.com/htrskmiku/solabot/internal/db"
	"github.com/htrskmiku/solabot/internal/ingest"
	"github.com/htrskmiku/solabot/internal/pipeline"
	"github.com/htrskmiku/solabot/internal/refdata"
)

const ConfigPath = "config/server.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	slog.Info("solabot snapshot service starting")

	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("SOLABOT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "bind", cfg.BindAddress, "port", cfg.Port, "regions", len(cfg.Keysets))

	// Load reference bundle
	bundle, err := refdata.Load(cfg.BundleDir)
	if err != nil {
		return fmt.Errorf("loading reference bundle: %w", err)
	}

	// Build the processing pipeline
	proc, err := pipeline.New(cfg, bundle)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	// Connect to the optional record store
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		proc.SetStore(database)
	}

	// Catch up on snapshots uploaded while the service was down
	if err := proc.Backlog(ctx); err != nil {
		slog.Warn("backlog scan failed", "err", err)
	}

	srv := ingest.NewServer(cfg)

	// Run the ingress and the pipeline worker in parallel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting upload ingress")
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("upload ingress: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting pipeline worker")
		if err := proc.Run(gctx, srv.Jobs()); err != nil {
			return fmt.Errorf("pipeline worker: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
