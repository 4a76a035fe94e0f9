package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/heartmarshall/mealink-backend/internal/config"
)

func TestNewLogger_InstallsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"}, "server")
	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should install the returned logger as slog default")
	}
}

func TestNewLogger_JSONCarriesBinaryAndVersion(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "json"}, "cleanup").
		Info("orphans removed", slog.Int("count", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json format should produce one JSON object: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"app":     "mealink",
		"bin":     "cleanup",
		"version": Build().Version,
		"msg":     "orphans removed",
		"count":   float64(3),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
	if _, ok := rec["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLogger_TextIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "TEXT"}, "pantry").Info("saved")

	out := buf.String()
	for _, want := range []string{"source=", "bin=pantry", "app=mealink", "msg=saved"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output %q should contain %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_SuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, "server")

	logger.InfoContext(context.Background(), "search served")
	if buf.Len() != 0 {
		t.Fatalf("info should be suppressed at warn level, got %q", buf.String())
	}
	logger.WarnContext(context.Background(), "store returned an ingredient not visible to requester")
	if buf.Len() == 0 {
		t.Fatal("warn should be written at warn level")
	}
}
