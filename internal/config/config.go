package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string
	DataDir  string

	// Catalog is a catalog file under DataDir/catalogs used for new games.
	// Empty means the built-in catalog.
	Catalog string
	// GameSeed seeds new games when a request does not carry its own seed.
	// Zero picks a random seed per game.
	GameSeed int64

	SnapshotTTL  time.Duration
	RateLimitRPS float64
	RateBurst    int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		Catalog:     getEnv("CATALOG", ""),
	}

	var err error
	if cfg.GameSeed, err = strconv.ParseInt(getEnv("GAME_SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid GAME_SEED: %w", err)
	}
	if cfg.SnapshotTTL, err = time.ParseDuration(getEnv("SNAPSHOT_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.SnapshotTTL <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_TTL must be positive, got %s", cfg.SnapshotTTL)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
