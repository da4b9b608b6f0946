package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestProfilesLoad(t *testing.T) {
	for _, name := range Profiles() {
		cfg, err := Profile(name)
		if err != nil {
			t.Fatalf("Profile(%q) returned error: %v", name, err)
		}
		if cfg.Variant != name {
			t.Errorf("profile %q declares variant %q", name, cfg.Variant)
		}
		if cfg.Tick != 1500*time.Millisecond {
			t.Errorf("profile %q tick = %s, want 1.5s", name, cfg.Tick)
		}
		if cfg.Grid.Size != 24 {
			t.Errorf("profile %q grid size = %d, want 24", name, cfg.Grid.Size)
		}
		if cfg.Feed.Capacity != 5 {
			t.Errorf("profile %q feed capacity = %d, want 5", name, cfg.Feed.Capacity)
		}
	}
	if len(Profiles()) != 2 {
		t.Fatalf("expected two embedded profiles, got %v", Profiles())
	}
}

func TestNetworkProfileBounds(t *testing.T) {
	cfg, err := Profile("network")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	bt, ok := cfg.Metric("blockTime")
	if !ok {
		t.Fatalf("blockTime metric missing")
	}
	if bt.Min == nil || *bt.Min != 8 || bt.Max != nil {
		t.Fatalf("blockTime bounds = %v/%v, want floor 8 and no ceiling", bt.Min, bt.Max)
	}
	if got := bt.Clamp(3); got != 8 {
		t.Fatalf("Clamp(3) = %v, want 8", got)
	}
	cr, _ := cfg.Metric("confirmationRate")
	if cr.Clamp(1.2) != 1 || cr.Clamp(-0.1) != 0 {
		t.Fatalf("confirmationRate not clamped to [0,1]")
	}
	if cfg.Nodes.CountMetric != "nodeCount" {
		t.Fatalf("count metric = %q", cfg.Nodes.CountMetric)
	}
}

func TestUnknownProfile(t *testing.T) {
	_, err := Profile("mainnet")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

const minimalYAML = `
name: test
variant: network
tick_interval: 250ms
metrics:
  - key: tps
    label: TPS
    mode: uniform
    min: 1
    max: 10
    integer: true
grid:
  size: 4
  regenerate: tick
nodes:
  count: 3
feed:
  kind: alerts
  title: Alerts
  placeholder: none
  probability: 0.5
  capacity: 5
layout:
  title: Test
  tiles:
    - key: tps
`

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Tick != 250*time.Millisecond {
		t.Errorf("tick = %s", cfg.Tick)
	}
	if cfg.Grid.Columns != 6 || len(cfg.Grid.Roles) != 3 {
		t.Errorf("grid defaults not applied: %+v", cfg.Grid)
	}
	if cfg.Feed.AlertMessage == "" || cfg.Feed.AlertLevel != "critical" {
		t.Errorf("alert defaults not applied: %+v", cfg.Feed)
	}
	if cfg.Metrics[0].Format != FormatNumber {
		t.Errorf("metric format default = %q", cfg.Metrics[0].Format)
	}
}

func TestSchemaRejectsUnknownField(t *testing.T) {
	data := []byte(minimalYAML + "colour: red\n")
	if err := ValidateWithCue(data, Schema()); err == nil {
		t.Fatalf("expected schema error for unknown field")
	}
}

func TestSchemaRejectsBadMode(t *testing.T) {
	data := []byte(`
name: x
variant: network
tick_interval: 1s
metrics:
  - key: a
    label: A
    mode: gaussian
grid:
  size: 1
  regenerate: tick
nodes: {}
feed:
  kind: alerts
  title: t
  placeholder: p
  probability: 0.1
  capacity: 5
layout:
  title: t
  tiles: []
`)
	if err := ValidateWithCue(data, Schema()); err == nil {
		t.Fatalf("expected schema error for unknown mode")
	}
}

func TestValidateSemanticErrors(t *testing.T) {
	lo, hi := 5.0, 1.0
	cfg := &Config{
		TickInterval: "1s",
		Metrics:      []Metric{{Key: "x", Mode: ModeWalk, Min: &lo, Max: &hi}},
		Grid:         Grid{Size: 1},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for min > max, got %v", err)
	}

	cfg = &Config{
		TickInterval: "1s",
		Metrics:      []Metric{{Key: "x", Mode: ModeFixed}},
		Grid:         Grid{Size: 1},
		Layout:       Layout{Tiles: []Tile{{Key: "missing"}}},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown tile key, got %v", err)
	}

	cfg = &Config{
		TickInterval: "soon",
		Metrics:      []Metric{{Key: "x", Mode: ModeFixed}},
		Grid:         Grid{Size: 1},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad duration, got %v", err)
	}
}

func TestTileLabel(t *testing.T) {
	cfg, err := Profile("network")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got := cfg.TileLabel(Tile{Key: "transactionVolume"}); got != "Transaction Volume" {
		t.Fatalf("TileLabel = %q", got)
	}
	if got := cfg.TileLabel(Tile{Key: "syncStatus", Label: "Sync Status"}); got != "Sync Status" {
		t.Fatalf("TileLabel = %q", got)
	}
}
