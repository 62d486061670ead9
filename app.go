package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed templates/*
var resources embed.FS

var templates = template.Must(template.ParseFS(resources, "templates/*"))

type app struct {
	cfg      *config
	log      *slog.Logger
	auth     authenticator
	tokens   tokenSources
	clients  spotifyClients
	sessions sessions.Store
	backups  BackupStore
	clock    clockwork.Clock
	metrics  *metrics
	registry *prometheus.Registry
}

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backups, err := openBackupStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := backups.Close(); err != nil {
			log.Error("Failed to close backup store", "error", err)
		}
	}()

	a := newApp(cfg, log, newAuthenticator(cfg), newTokenSources(cfg), newSpotifyClients(), backups, clockwork.NewRealClock())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening on", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

func newApp(cfg *config, log *slog.Logger, auth authenticator, tokens tokenSources, clients spotifyClients, backups BackupStore, clock clockwork.Clock) *app {
	registry := prometheus.NewRegistry()

	return &app{
		cfg:      cfg,
		log:      log,
		auth:     auth,
		tokens:   tokens,
		clients:  clients,
		sessions: newSessionStore(cfg),
		backups:  backups,
		clock:    clock,
		metrics:  newMetrics(registry),
		registry: registry,
	}
}
