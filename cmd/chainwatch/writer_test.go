package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/sim"
)

func networkProfile(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Profile("network")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	return cfg
}

func TestNewWritersPrintOnly(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "localhost:4001")
	w, cleanup, err := newWriters(networkProfile(t), "run", writerOptions{PrintOnly: true})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriters(networkProfile(t), "run", writerOptions{Stdout: true})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", w)
	}
}

func TestNewWritersCleanupClosesGreptime(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "localhost:4001")
	t.Setenv("GREPTIMEDB_DATABASE", "")
	w, cleanup, err := newWriters(networkProfile(t), "run", writerOptions{})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := w.(*sim.GreptimeDBWriter); !ok {
		t.Fatalf("expected *sim.GreptimeDBWriter, got %T", w)
	}
	cleanup()
	frame := chain.Frame{Metrics: chain.MetricsSnapshot{Tick: 1, Values: map[string]float64{}, Timestamp: time.Now()}}
	if err := w.Write(frame); err == nil {
		t.Fatalf("greptime writer still usable after cleanup")
	}
}

func TestNewWritersNowhere(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriters(networkProfile(t), "run", writerOptions{})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if w != nil {
		t.Fatalf("expected no writer, got %T", w)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	w, cleanup, err := newWriters(networkProfile(t), "run", writerOptions{PrintOnly: true, Record: path})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	mw, ok := w.(*sim.MultiWriter)
	if !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	if mw.Len() != 2 {
		t.Fatalf("expected stdout and file writers, got %d", mw.Len())
	}

	frame := chain.Frame{
		Metrics: chain.MetricsSnapshot{Tick: 1, Values: map[string]float64{}, Timestamp: time.Now()},
		Feed:    &chain.FeedItem{ID: 1, Kind: chain.KindAlert},
	}
	if err := mw.Write(frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cleanup()
	for _, p := range []string{path, path + ".feed"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestTickInterval(t *testing.T) {
	cfg := networkProfile(t)
	t.Setenv("TICK_INTERVAL", "")
	if d, err := tickInterval(cfg, 0); err != nil || d != 1500*time.Millisecond {
		t.Fatalf("profile tick = %v, %v", d, err)
	}
	if d, _ := tickInterval(cfg, time.Second); d != time.Second {
		t.Fatalf("flag tick = %v", d)
	}
	t.Setenv("TICK_INTERVAL", "250ms")
	if d, _ := tickInterval(cfg, time.Second); d != 250*time.Millisecond {
		t.Fatalf("env tick = %v", d)
	}
	t.Setenv("TICK_INTERVAL", "soon")
	if _, err := tickInterval(cfg, 0); err == nil {
		t.Fatalf("expected error for invalid TICK_INTERVAL")
	}
}

func TestLoadProfileVariant(t *testing.T) {
	old := profileVariant
	defer func() { profileVariant = old }()
	profileVariant = "ledger"
	cfg, err := loadProfile()
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if cfg.Variant != "ledger" {
		t.Fatalf("variant = %q", cfg.Variant)
	}
	profileVariant = "mainnet"
	if _, err := loadProfile(); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestNewSourceSeeded(t *testing.T) {
	cfg := networkProfile(t)
	a, err := newSource(cfg, "", 9)
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	b, _ := newSource(cfg, "", 9)
	if a.Initial().Grid[3].Status != b.Initial().Grid[3].Status {
		t.Fatalf("same seed should give the same grid")
	}
	if _, err := newSource(cfg, filepath.Join(t.TempDir(), "missing.jsonl"), 0); err == nil {
		t.Fatalf("expected error for missing recording")
	}
}
