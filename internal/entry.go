// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"wilhelm/internal/api"
	"wilhelm/internal/health"
	"wilhelm/internal/mcpserver"
	"wilhelm/internal/metrics"
)

// Version is reported by the MCP server.
var Version = "dev"

// Run serves the REST API until a shutdown signal or ctx cancellation.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := NewLogger(cfg, app.logOutput)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("neo4j_uri", cfg.Neo4j.URI),
		slog.Int("parallelism", cfg.Expansion.Parallelism),
		slog.Bool("history", cfg.History.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	comps, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close(context.Background())

	probe, err := health.NewProbe(comps.Store,
		health.WithInterval(cfg.Health.ProbeInterval),
		health.WithCheckTimeout(cfg.Neo4j.ConnectTimeout),
		health.WithResultHook(metrics.SetStoreUp),
		health.WithProbeLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init probe: %w", err)
	}
	reporter := health.NewReporter(probe)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           api.NewRouter(comps.Vocab, reporter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := probe.Start(gCtx); err != nil {
			return fmt.Errorf("start probe: %w", err)
		}
		<-gCtx.Done()
		probe.Stop()
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblocks the probe goroutine after a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown requested")

// RunMCP serves the MCP tools over stdio. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := NewLogger(app.config, app.logOutput)

	comps, err := Open(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer comps.Close(context.Background())

	var explainer mcpserver.Explainer
	if comps.Explainer != nil {
		explainer = comps.Explainer
	}
	server := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "wilhelm",
		ServerVersion: Version,
	}, comps.Vocab, explainer, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}
