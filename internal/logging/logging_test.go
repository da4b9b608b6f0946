package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	ctx := NewContext(context.Background(), l)
	FromContext(ctx).Info("tick", "n", 1)
	if !strings.Contains(buf.String(), "msg=tick") {
		t.Fatalf("expected logger from context to be used, got %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected slog.Default for empty context")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug {
		t.Fatalf("debug not parsed")
	}
	if ParseLevel("warning") != slog.LevelWarn {
		t.Fatalf("warning not parsed")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record should be filtered at warn level")
	}
}
