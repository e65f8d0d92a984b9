// Package config loads the server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	AdminPassword string        `env:"ADMIN_PASSWORD,required,notEmpty"`
	DatabaseURL   string        `env:"TURSO_DATABASE_URL,required,notEmpty"`
	AuthToken     string        `env:"TURSO_AUTH_TOKEN,required,notEmpty"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	// Telegram notifications are optional.
	TelegramToken       string `env:"TELEGRAM_TOKEN"`
	TelegramAdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID"`
}

// Load reads an optional .env file and parses the environment into a Config.
// A missing secret is a startup error.
func Load() (Config, error) {
	_ = godotenv.Load() // Load .env file if exists
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return cfg, nil
}
