package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"3000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Liveness sweep period. A connection that misses one full cycle
	// without answering the probe is terminated on the next sweep.
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" default:"30s"`

	// Per-connection message cap within the fixed 1-second window.
	MessageRateLimit int `env:"MESSAGE_RATE_LIMIT" default:"10"`

	// Connection admission limits, checked before the websocket upgrade.
	MaxConnections          int     `env:"MAX_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"32"`
	ConnectionRatePerSecond float64 `env:"CONNECTION_RATE_PER_SECOND" default:"10"`
	ConnectionBurst         int     `env:"CONNECTION_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive, got %v", cfg.HeartbeatInterval)
	}
	if cfg.MessageRateLimit < 1 {
		return fmt.Errorf("MESSAGE_RATE_LIMIT must be at least 1, got %d", cfg.MessageRateLimit)
	}
	if cfg.MaxConnections < 1 {
		return fmt.Errorf("MAX_CONNECTIONS must be at least 1, got %d", cfg.MaxConnections)
	}
	if cfg.MaxConnectionsPerIP < 1 {
		return fmt.Errorf("MAX_CONNECTIONS_PER_IP must be at least 1, got %d", cfg.MaxConnectionsPerIP)
	}
	if cfg.ConnectionRatePerSecond <= 0 {
		return fmt.Errorf("CONNECTION_RATE_PER_SECOND must be positive, got %v", cfg.ConnectionRatePerSecond)
	}
	if cfg.ConnectionBurst < 1 {
		return fmt.Errorf("CONNECTION_BURST must be at least 1, got %d", cfg.ConnectionBurst)
	}
	return nil
}
