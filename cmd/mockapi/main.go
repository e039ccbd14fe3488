package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mock-api/internal/config"
	"mock-api/internal/server"
)

func main() {
	cfg := config.Load(os.Getenv)

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mockapi: create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("configuration loaded", zap.Stringer("config", cfg))
	for _, w := range cfg.Warnings {
		logger.Warn("invalid configuration value, using default",
			zap.String("field", w.Field),
			zap.String("value", w.Value),
			zap.String("reason", w.Message),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("mock api stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// run creates the upload directory, serves the API until ctx is done and
// then shuts down. Failing to create the directory or bind the port
// returns before any request is accepted.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store := server.NewLocalUploadStore(cfg.UploadDir)
	if err := store.Ensure(); err != nil {
		return err
	}

	metrics := server.NewMetrics()
	srv := server.New(server.Config{
		Addr: cfg.Addr(),
		Auth: server.AuthConfig{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
			Token:    cfg.Auth.Token,
		},
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
	})

	// Start the HTTP servers in background goroutines so we can wait
	// for the shutdown signal here.
	errCh := make(chan error, 2)
	go func() {
		logger.Info("starting mock api",
			zap.String("addr", cfg.Addr()),
			zap.String("upload_dir", store.Dir()),
		)
		errCh <- srv.Start()
	}()

	var opsSrv *http.Server
	if cfg.Server.OpsAddr != "" {
		opsSrv = server.NewOpsServer(cfg.Server.OpsAddr, metrics, store)
		go func() {
			logger.Info("starting ops listener", zap.String("addr", cfg.Server.OpsAddr))
			if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("ops listener: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		if runErr == nil {
			return nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if opsSrv != nil {
		_ = opsSrv.Shutdown(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown: %w", err)
	}
	if runErr == nil {
		logger.Info("shutdown complete")
	}
	return runErr
}
