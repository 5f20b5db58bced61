package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "fetcher")

	log.Error("fetch %s failed", "TK1")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "fetcher", rec["component"])
	assert.Equal(t, "fetch TK1 failed", rec["message"])
	assert.Contains(t, rec, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "ui")

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNoop(t *testing.T) {
	log := Noop()
	assert.NotPanics(t, func() {
		log.Debug("x")
		log.Info("x")
		log.Warn("x")
		log.Error("x %d", 1)
	})
}

func TestBufferLogger(t *testing.T) {
	log := NewBufferLogger()
	log.Info("hello %s", "world")
	log.Error("boom")

	assert.True(t, log.HasLevel("info"))
	assert.True(t, log.HasLevel("error"))
	assert.False(t, log.HasLevel("warn"))

	msgs := log.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello world", msgs[0].Message)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsole(&buf, "debug", "serve")

	log.Warn("listening on %s", ":8080")

	out := buf.String()
	assert.Contains(t, out, "listening on :8080")
	assert.Contains(t, out, "serve")
}
