// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port           string
	DBPath         string // empty means db.DefaultPath
	UploadDir      string
	DevMode        bool
	CORSOrigins    []string
	StatsTTL       time.Duration // 0 disables the stats cache
	MaxUploadBytes int64
}

// Load reads a .env file from the working directory, if present, into the
// process environment and then builds a Config from it. Variables already
// set in the environment take precedence over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	ttl, err := time.ParseDuration(envOrDefault("DESK_STATS_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("DESK_STATS_TTL: %w", err)
	}
	if ttl < 0 {
		return Config{}, fmt.Errorf("DESK_STATS_TTL must not be negative")
	}

	maxMB, err := strconv.Atoi(envOrDefault("DESK_MAX_UPLOAD_MB", "32"))
	if err != nil || maxMB <= 0 {
		return Config{}, fmt.Errorf("DESK_MAX_UPLOAD_MB must be a positive integer")
	}

	return Config{
		Port:           envOrDefault("DESK_PORT", "5001"),
		DBPath:         os.Getenv("DESK_DB"),
		UploadDir:      envOrDefault("DESK_UPLOAD_DIR", "uploads"),
		DevMode:        os.Getenv("DESK_DEV_MODE") == "true",
		CORSOrigins:    splitList(envOrDefault("DESK_CORS_ORIGINS", "*")),
		StatsTTL:       ttl,
		MaxUploadBytes: int64(maxMB) << 20,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
