package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/config"
	httpserver "github.com/fyrsmithlabs/geoextract/internal/http"
	"github.com/fyrsmithlabs/geoextract/internal/reload"
	"github.com/fyrsmithlabs/geoextract/internal/service"
	"github.com/fyrsmithlabs/geoextract/internal/telemetry"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction service",
		Long: `Serve the extraction API over HTTP until interrupted.

With locations.watch enabled the location file is reloaded whenever it
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve runs the HTTP server and blocks until ctx is cancelled, then shuts
// down within the configured timeout.
func serve(ctx context.Context, cfg *config.Config) error {
	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zl := logger.Underlying()

	if err := tel.LastError(); err != nil {
		logger.Warn(ctx, "telemetry degraded", zap.Error(err))
	}

	logger.Info(ctx, "starting geoextract",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("watch", cfg.Locations.Watch),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	var ex service.Extractor
	if cfg.Locations.Watch {
		w, err := reload.NewWatcher(cfg.Locations.Path, pipelineBuilder(cfg, zl), zl)
		if err != nil {
			return fmt.Errorf("failed to load locations: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
		ex = w
	} else {
		p, err := buildPipeline(cfg, zl)
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}
		ex = p
	}

	srv, err := httpserver.NewServer(ex, zl, &httpserver.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.HTTPPort,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		zl.Warn("telemetry shutdown failed", zap.Error(err))
	}

	zl.Info("shutdown complete")
	return serveErr
}
