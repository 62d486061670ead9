package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type config struct {
	AppEnv        string        `env:"APP_ENV" default:"development"`
	Port          string        `env:"PORT" default:"8080"`
	BaseURL       string        `env:"BASE_URL" default:"http://localhost:8080"`
	SpotifyID     string        `env:"SPOTIFY_ID"`
	SpotifySecret string        `env:"SPOTIFY_SECRET"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	Region        string        `env:"FLY_REGION"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info"`
	LogFormat     string        `env:"LOG_FORMAT" default:"text"`

	BackupHistoryLimit int     `env:"BACKUP_HISTORY_LIMIT" default:"10"`
	AuthRatePerSecond  float64 `env:"AUTH_RATE_PER_SECOND" default:"1"`
	AuthRateBurst      int     `env:"AUTH_RATE_BURST" default:"5"`
}

func loadConfig() (*config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *config) validate() error {
	required := map[string]string{
		"SPOTIFY_ID":     c.SpotifyID,
		"SPOTIFY_SECRET": c.SpotifySecret,
		"SESSION_SECRET": c.SessionSecret,
		"BASE_URL":       c.BaseURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.BackupHistoryLimit <= 0 {
		return errors.New("BACKUP_HISTORY_LIMIT must be positive")
	}
	if c.AuthRatePerSecond <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_PER_SECOND and AUTH_RATE_BURST must be positive")
	}

	return nil
}

func (c *config) production() bool {
	return c.AppEnv == "production"
}

func (c *config) callbackURL() string {
	return c.BaseURL + "/auth/callback"
}
