package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/catalograg/internal/transport/chi"
	"github.com/kailas-cloud/catalograg/internal/version"
)

// sessionSweepInterval controls how often expired conversation contexts are dropped.
const sessionSweepInterval = time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := opts.serverLogger(&cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting catalograg API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.resolveEnv()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("llm_model", cfg.LLM.Model),
	)

	a, err := newApp(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		_ = logger.Sync()
		return err
	}
	defer a.Close()

	server := chiTransport.NewServer(a.pipeline, a.health, a.llm, a.provider, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: seconds(cfg.HTTP.WriteTimeoutSec),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: seconds(cfg.HTTP.ReadTimeoutSec),
		ReadTimeout:       seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout:      seconds(cfg.HTTP.WriteTimeoutSec),
	}

	go sweepSessions(ctx, a)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", zap.Error(err))
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// sweepSessions periodically drops expired contexts and refreshes the sessions gauge.
func sweepSessions(ctx context.Context, a *app) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := a.pipeline.ActiveSessions()
			a.logger.Debug("Session sweep", zap.Int("active", n))
		}
	}
}
