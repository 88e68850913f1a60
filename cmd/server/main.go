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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/moneyhive-bank/internal/config"
	"github.com/hongminglow/moneyhive-bank/internal/logging"
	"github.com/hongminglow/moneyhive-bank/internal/server"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

type storeOpener func(context.Context, config.Config) (storage.Store, error)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	if envErr != nil {
		logger.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, server.OpenStore); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// run serves until ctx is done or the listener fails. The store is closed
// on every return path.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, open storeOpener) error {
	store, err := open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage (%s): %w", cfg.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("close storage")
		}
	}()

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("driver", cfg.Driver).Msg("MoneyHive Bank listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("http server error")
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return serveErr
}
