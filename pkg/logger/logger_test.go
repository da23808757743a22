package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"diuresults/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: level}, &buf)
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug json", &config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"with file", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.level)
		assert.Equal(t, tt.wantErr, err != nil, tt.level)
		assert.Equal(t, tt.expected, level, tt.level)
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	child := l.WithField("stage", "fetch").WithError(errors.New("boom"))
	child.InfoWithFields("key done", map[string]interface{}{
		"semester": "241",
		"attempts": 2,
	})
	// the parent must not inherit child fields
	l.Info("plain")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "fetch", lines[0]["stage"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "241", lines[0]["semester"])
	assert.Equal(t, float64(2), lines[0]["attempts"])
	assert.Equal(t, "diuresults", lines[0]["app"])
	assert.NotContains(t, lines[1], "stage")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	tl.WithField("student_id", "x").WarnWithFields("skipped", map[string]interface{}{"file": "a.json"})
	tl.Error("failed")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "x", msgs[0].Fields["student_id"])
	assert.Equal(t, "a.json", msgs[0].Fields["file"])
	assert.True(t, tl.HasMessage("skip"))
	assert.True(t, tl.HasError())

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).Info("nothing")
	assert.NotNil(t, l.GetZerolog())
}
