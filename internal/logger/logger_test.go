package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestNewJSON(t *testing.T) {
	SetLevel(slog.LevelInfo)
	var buf bytes.Buffer
	l := New(&buf, "json")
	l.Info("ticket created", "ticket_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ticket created", entry["msg"])
	assert.Equal(t, float64(7), entry["ticket_id"])
}

func TestNewConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "console")

	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	l.Info("hidden")
	l.Warn("shown", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"))
	assert.Contains(t, out, "boom")
}
