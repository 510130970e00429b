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
	"github.com/ssrocks/rishop-backend/internal/config"
	"github.com/ssrocks/rishop-backend/internal/db"
	"github.com/ssrocks/rishop-backend/internal/logging"
	appmw "github.com/ssrocks/rishop-backend/internal/middleware"
	"github.com/ssrocks/rishop-backend/internal/server"
	"github.com/ssrocks/rishop-backend/internal/service"
	"github.com/ssrocks/rishop-backend/internal/storage"
	"go.uber.org/zap"
)

// Set via -ldflags at build time.
var (
	SHA       = "dev"
	BuildTime = ""
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var verifier appmw.TokenVerifier
	if cfg.FirebaseProjectID != "" {
		verifier, err = appmw.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return fmt.Errorf("init firebase auth: %w", err)
		}
	} else {
		logger.Warn("firebase disabled; only the development auth header is accepted", zap.String("header", cfg.AuthDevHeader))
	}

	var images service.ImageStore
	if cfg.StorageBucket != "" {
		store, err := storage.NewGCSImageStore(ctx, cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
		images = store
	}

	srv := server.New(server.Deps{
		DB:        conn,
		Config:    cfg,
		Logger:    logger,
		Verifier:  verifier,
		Images:    images,
		SHA:       SHA,
		BuildTime: BuildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("git_sha", SHA), zap.String("env", cfg.AppEnv))
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
