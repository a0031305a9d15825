package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/pscheid92/nano/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewHandler_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "info", "text"))

	logger.Debug("hidden")
	logger.Info("shown", "command", "ping")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "command=ping")
}

func TestNewHandler_FanoutToSink(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(NewHandler(&console, "debug", "text", &file))

	ctx := correlation.WithID(context.Background(), "abcd1234")
	logger.InfoContext(ctx, "rendered", "pixels", 42)

	assert.Contains(t, console.String(), "correlation_id=abcd1234")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "rendered", record["msg"])
	assert.Equal(t, "abcd1234", record["correlation_id"])
	assert.InDelta(t, 42, record["pixels"], 0)
}
