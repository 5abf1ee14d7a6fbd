package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Debug("skipped")
	log.Info("skipped")
	log.Warn("kept")
	log.Error("kept too")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "kept", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{
		"ticker": "AAPL",
		"bars":   63,
	}).Info("fetched")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0]["ticker"])
	assert.Equal(t, float64(63), entries[0]["bars"])
	assert.NotEmpty(t, entries[0]["time"])
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(&buf, "info")

	parent.WithField("mode", "momentum").Info("child")
	parent.Info("parent")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "momentum", entries[0]["mode"])
	_, ok := entries[1]["mode"]
	assert.False(t, ok)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.WithError(errors.New("upstream timeout")).Errorf("fetch %s failed", "MSFT")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream timeout", entries[0]["error"])
	assert.Equal(t, "fetch MSFT failed", entries[0]["message"])
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("nothing")
		log.WithField("k", "v").Warnf("still %s", "nothing")
	})
}
