// Package config loads process-level settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/rxtech-lab/ticker-history/pkg/marketdata/provider"
)

// Config holds settings that are not passed on the command line.
type Config struct {
	PolygonAPIKey string        `envconfig:"POLYGON_API_KEY"`
	YahooBaseURL  string        `envconfig:"YAHOO_BASE_URL"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file from the working directory and then
// populates Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if cfg.YahooBaseURL == "" {
		cfg.YahooBaseURL = provider.DefaultYahooBaseURL
	}

	return &cfg, nil
}
