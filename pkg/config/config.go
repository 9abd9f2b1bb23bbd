// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"campuseats/pkg/order"
)

type Config struct {
	Addr     string `env:"HTTP_ADDR" default:":8080"`
	TLSCert  string `env:"TLS_CERT"`
	TLSKey   string `env:"TLS_KEY"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	OtelHost         string  `env:"OTEL_HOST"`
	TraceProbability float64 `env:"TRACE_PROBABILITY" default:"1"`

	MessageTTL       time.Duration `env:"MESSAGE_TTL" default:"2s"`
	SummaryDelay     time.Duration `env:"SUMMARY_DELAY" default:"1200ms"`
	ConfirmDelay     time.Duration `env:"CONFIRM_DELAY" default:"1500ms"`
	ConfirmationHold time.Duration `env:"CONFIRMATION_HOLD" default:"5s"`

	ReceiptLimit    int           `env:"RECEIPT_LIMIT" default:"100"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Delays returns the session timings.
func (c *Config) Delays() order.Delays {
	return order.Delays{
		Message: c.MessageTTL,
		Summary: c.SummaryDelay,
		Confirm: c.ConfirmDelay,
		Hold:    c.ConfirmationHold,
	}
}

func validate(cfg *Config) error {
	delays := map[string]time.Duration{
		"MESSAGE_TTL":       cfg.MessageTTL,
		"SUMMARY_DELAY":     cfg.SummaryDelay,
		"CONFIRM_DELAY":     cfg.ConfirmDelay,
		"CONFIRMATION_HOLD": cfg.ConfirmationHold,
	}
	for name, d := range delays {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if cfg.TraceProbability < 0 || cfg.TraceProbability > 1 {
		return errors.New("TRACE_PROBABILITY must be between 0 and 1")
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	return nil
}
