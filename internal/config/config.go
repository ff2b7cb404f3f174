// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server binary needs. All values come from the
// environment with sensible defaults for local development.
type Config struct {
	Addr          string        `env:"FEEDBACK_ADDR" envDefault:":8080"`
	DBPath        string        `env:"FEEDBACK_DB_PATH" envDefault:"data/feedback.db"`
	MigrationsDir string        `env:"FEEDBACK_MIGRATIONS_DIR"`
	SinkBaseURL   string        `env:"FEEDBACK_SINK_BASE_URL,required,notEmpty"`
	SinkTimeout   time.Duration `env:"FEEDBACK_SINK_TIMEOUT" envDefault:"15s"`
	JWTSecret     string        `env:"FEEDBACK_JWT_SECRET" envDefault:"dev-secret-change-me"`
	DraftTTL      time.Duration `env:"FEEDBACK_DRAFT_TTL" envDefault:"24h"`
	LockWindow    time.Duration `env:"FEEDBACK_LOCK_WINDOW" envDefault:"720h"`
	SaveDebounce  time.Duration `env:"FEEDBACK_SAVE_DEBOUNCE" envDefault:"1s"`
	StaticDir     string        `env:"FEEDBACK_STATIC_DIR"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
