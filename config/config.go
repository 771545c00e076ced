// Package config loads server configuration from the environment, with an
// optional .env file for local development. The primary-owner identity lives
// here rather than in code: the engine receives it at construction.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port  int    `env:"PORT" envDefault:"8080"`
	Store string `env:"STORE" envDefault:"jsonfile"` // jsonfile | sqlite | memory

	// DataPath is the snapshot file for jsonfile, or the database file for
	// sqlite.
	DataPath string `env:"DATA_PATH" envDefault:"academy.json"`

	OwnerUsername string `env:"OWNER_USERNAME" envDefault:"nour"`
	OwnerEmail    string `env:"OWNER_EMAIL" envDefault:"nour@gmail.com"`
	OwnerPhone    string `env:"OWNER_PHONE" envDefault:"01028178830"`
	OwnerFullName string `env:"OWNER_FULL_NAME" envDefault:"Eng. Shehab Elebady"`

	// Content helper: empty URL disables the companion entirely; the API
	// then serves the fixed fallback.
	ContentHelperURL     string        `env:"CONTENT_HELPER_URL"`
	ContentHelperKey     string        `env:"CONTENT_HELPER_KEY"`
	ContentHelperTimeout time.Duration `env:"CONTENT_HELPER_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
