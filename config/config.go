package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	LogLevel        string
	SendBuffer      int
	MaxMessageSize  int64
	ShutdownTimeout time.Duration
}

func Default() Config {
	return Config{
		Port:            "8080",
		LogLevel:        "info",
		SendBuffer:      256,
		MaxMessageSize:  4096,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads an optional .env file and then the process environment.
// Unparseable values keep their default.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) Config {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("WS_SEND_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendBuffer = n
		} else {
			slog.Warn("invalid WS_SEND_BUFFER, using default", "value", v, "default", cfg.SendBuffer)
		}
	}
	if v := getenv("WS_MAX_MESSAGE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxMessageSize = n
		} else {
			slog.Warn("invalid WS_MAX_MESSAGE_SIZE, using default", "value", v, "default", cfg.MaxMessageSize)
		}
	}
	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		} else {
			slog.Warn("invalid SHUTDOWN_TIMEOUT, using default", "value", v, "default", cfg.ShutdownTimeout)
		}
	}
	return cfg
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
