package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/internal/db"
	"portfolio-backend/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		// Config failed before the logger exists; write plain and exit.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := server.NewLogger(cfg.LogFormat, cfg.LogLevel)

	// Database
	dbConn, err := server.OpenDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_connect_failed", nil, err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	logger.Info("running_migrations", nil)
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Error("migration_failed", nil, err)
		os.Exit(1)
	}
	logger.Info("migrations_complete", nil)

	// Object storage
	storage, err := server.NewFileStorage(cfg)
	if err != nil {
		logger.Error("storage_init_failed", nil, err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := storage.EnsureBucket(ctx); err != nil {
		cancel()
		logger.Error("bucket_init_failed", nil, err)
		os.Exit(1)
	}
	cancel()

	// Identity provider keys; the background refresh runs until shutdown.
	verifierCtx, stopVerifier := context.WithCancel(context.Background())
	defer stopVerifier()
	verifier, err := server.NewJWKSVerifier(verifierCtx, cfg.JWKSURL, cfg.JWTIssuer)
	if err != nil {
		logger.Error("jwks_init_failed", nil, err)
		os.Exit(1)
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Logger:   logger,
		DB:       dbConn,
		Repo:     server.NewStore(dbConn),
		Storage:  storage,
		Verifier: verifier,
	})

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting", map[string]any{
			"addr":    cfg.Addr,
			"version": cfg.Version,
		})
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting_down", map[string]any{"signal": sig.String()})
		// Give in-flight requests 5 seconds to finish.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown_error", nil, err)
			os.Exit(1)
		}
		logger.Info("shutdown_complete", nil)
	case err := <-errCh:
		if err != nil {
			logger.Error("server_error", nil, err)
			os.Exit(1)
		}
	}
}
