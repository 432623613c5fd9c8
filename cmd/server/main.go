package main

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

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/server"
	"github.com/Tyrowin/duochat/internal/store"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource of the process so that deferred cleanup happens
// before main exits.
func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := openStore(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...", "driver", cfg.StoreDriver)
		if err := gateway.Close(); err != nil {
			log.Warn("Closing store failed", "error", err)
		}
	}()

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.AuthTokenDuration)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	app := server.New(log, cfg, gateway, tokens)
	app.Start()
	httpServer := server.CreateServer(cfg.Addr, app.Routes())

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", cfg.Addr, "store", cfg.StoreDriver, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		_ = app.Shutdown(cfg.ShutdownTimeout)
		return err
	}

	if err := server.ShutdownServer(log, httpServer, cfg.ShutdownTimeout); err != nil {
		log.Warn("HTTP server did not stop cleanly", "error", err)
	}
	if err := app.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Warn("Hub did not stop cleanly", "error", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}

func openStore(ctx context.Context, log *slog.Logger, cfg server.Config) (store.Gateway, error) {
	switch cfg.StoreDriver {
	case server.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := store.OpenMongo(connectCtx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, fmt.Errorf("store opening failed: %w", err)
		}
		return s, nil
	default:
		s, err := store.OpenBadger(cfg.BadgerFilepath, log)
		if err != nil {
			return nil, fmt.Errorf("store opening failed: %w", err)
		}
		return s, nil
	}
}
