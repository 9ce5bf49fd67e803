package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"none", LevelNone},
		{"basic", LevelBasic},
		{"INFO", LevelBasic},
		{"verbose", LevelRequests},
		{"requests", LevelRequests},
		{" debug ", LevelDebug},
		{"0", LevelNone},
		{"3", LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseLevel("9")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "requests", LevelRequests.String())
	assert.Equal(t, "7", Level(7).String())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithColor(false), WithLevel(LevelBasic))

	l.Info("loaded %d lines", 3)
	l.Warn("careful")
	l.Debug("hidden")
	l.Request(Request{Method: "GET", Path: "/", Status: 200})

	out := buf.String()
	assert.Contains(t, out, "[INFO] loaded 3 lines")
	assert.Contains(t, out, "[WARN] careful")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "GET")
	assert.NotContains(t, out, "\033[")
}

func TestLoggerNoneIsSilent(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithLevel(LevelNone))
	l.Error("boom")
	l.Info("x")
	assert.Empty(t, buf.String())
}

func TestLoggerRequest(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithColor(false), WithLevel(LevelDebug))

	l.Request(Request{
		ID:       "req-1",
		Method:   "GET",
		Path:     "/api/document",
		Status:   404,
		Bytes:    12,
		Encoding: "br",
		Duration: 1500 * time.Microsecond,
	})

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "GET /api/document 404 12B br 1.5ms req-1"), line)
}

func TestColorize(t *testing.T) {
	var buf bytes.Buffer
	New(WithOutput(&buf), WithColor(true)).Error("x")
	assert.Contains(t, buf.String(), colorRed+"[ERROR]"+colorReset)
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Info("x")
	l.Request(Request{})
}
