package config

import (
	"ctchen222/tictactoe-solo/internal/validator"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr        string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s" validate:"gt=0"`
	Rooms           Rooms         `yaml:"rooms"`
	Telemetry       Telemetry     `yaml:"telemetry"`
}

type Rooms struct {
	IdleTimeout       time.Duration `yaml:"idle-timeout" env:"ROOM_IDLE_TIMEOUT" env-default:"30m" validate:"gt=0"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"HEARTBEAT_INTERVAL" env-default:"10s" validate:"gt=0"`
}

type Telemetry struct {
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	// Endpoint is the OTLP gRPC collector address. Empty disables export.
	Endpoint string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Stdout   bool   `yaml:"stdout" env:"OTEL_STDOUT" env-default:"false"`
}

// Load reads the YAML file at path, when given, and applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad - load configuration or exit.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "config file %s: %v\n", pathErr.Path, pathErr.Err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	return cfg
}

// SlogLevel converts the configured level name.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Usage describes every setting and its environment variable.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
