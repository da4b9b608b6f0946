package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/logging"
)

// loadProfile reads --config when given, the embedded --variant otherwise.
func loadProfile() (*config.Config, error) {
	if profileConfigPath != "" {
		return config.Load(profileConfigPath, profileSchemaPath)
	}
	return config.Profile(profileVariant)
}

// tickInterval resolves the tick: TICK_INTERVAL beats the flag, the flag beats the profile.
func tickInterval(cfg *config.Config, flagTick time.Duration) (time.Duration, error) {
	tick := cfg.Tick
	if flagTick > 0 {
		tick = flagTick
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return 0, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("invalid TICK_INTERVAL: must be positive")
		}
		tick = d
	}
	return tick, nil
}

// newSource replays a recording when replayPath is set and simulates otherwise.
func newSource(cfg *config.Config, replayPath string, seed int64) (chain.Source, error) {
	if replayPath != "" {
		return chain.OpenReplaySource(replayPath)
	}
	var r *rand.Rand
	if seed != 0 {
		r = rand.New(rand.NewSource(seed))
	}
	return chain.NewRandomSource(cfg, r), nil
}

// newLogger writes to path when set and to fallback otherwise. The returned
// close function releases the file.
func newLogger(path string, fallback io.Writer) (*slog.Logger, func(), error) {
	if path == "" {
		return logging.New(fallback, logging.LevelFromEnv()), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(f, logging.LevelFromEnv()), func() { f.Close() }, nil
}
