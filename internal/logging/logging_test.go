package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/folio/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "info", Format: "text"}, &buf, false)
	defer func() { _ = l.Close() }()

	l.Debug("hidden")
	l.Info("workspace created", slog.String("workspace", "w1"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"workspace created\"")
	assert.Contains(t, out, "workspace=w1")
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "error"}, &buf, true)
	l.Debug("chart target missing")
	assert.Contains(t, buf.String(), "chart target missing")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Format: "json"}, &buf, false)
	l.Warn("catalog reload failed", slog.Int("attempt", 2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "catalog reload failed", rec["msg"])
	assert.InDelta(t, 2, rec["attempt"], 0)
}

func TestNew_FileFanout(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "folio.log")
	cfg := config.LogConfig{Level: "info", File: path}
	config.ApplyLogDefaults(&cfg)

	l := New(cfg, &buf, false)
	l.With(slog.String("component", "ui")).Info("server started", slog.String("addr", "127.0.0.1:8765"))
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), "server started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "server started", rec["msg"])
	assert.Equal(t, "ui", rec["component"])
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	l := New(config.LogConfig{}, &bytes.Buffer{}, false)
	assert.NoError(t, l.Close())
}
