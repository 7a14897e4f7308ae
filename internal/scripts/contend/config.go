package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/vormadev/lazyonce/kit/colorlog"
)

// Environment variable keys
const (
	envGoroutines = "LAZYONCE_GOROUTINES"
	envRounds     = "LAZYONCE_ROUNDS"
	envLogLevel   = "LAZYONCE_LOG_LEVEL"
)

type config struct {
	goroutines int
	rounds     int
	level      slog.Level
}

// loadConfig reads the environment after merging in envFile, if it exists.
// Variables already set in the environment win over the file.
func loadConfig(envFile string) (config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := config{goroutines: 100, rounds: 1000}
	var err error
	if cfg.goroutines, err = positiveInt(envGoroutines, cfg.goroutines); err != nil {
		return config{}, err
	}
	if cfg.rounds, err = positiveInt(envRounds, cfg.rounds); err != nil {
		return config{}, err
	}
	if cfg.level, err = colorlog.ParseLevel(os.Getenv(envLogLevel)); err != nil {
		return config{}, fmt.Errorf("%s: %w", envLogLevel, err)
	}
	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, raw)
	}
	return n, nil
}
