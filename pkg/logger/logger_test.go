package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONWithServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf, Service: "availability"})

	log.Component("invalidator").Info("cache dropped", "technician_id", "tech-1")
	log.Debug("suppressed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "availability", rec[ServiceKey])
	assert.Equal(t, "invalidator", rec[ComponentKey])
	assert.Equal(t, "tech-1", rec["technician_id"])
	assert.Equal(t, "cache dropped", rec["msg"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "TEXT", Output: &buf})

	log.Warn("slow source", "ms", 1200)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="slow source"`)
	assert.Contains(t, buf.String(), "ms=1200")
}
