package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	gameLog := log.WithField("game", "g1")
	gameLog.Warn("HandleInbound: rejected reply from %s", "ac")
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="HandleInbound: rejected reply from ac"`)
	assert.Contains(t, out, "game=g1")
	assert.Contains(t, out, "service=refbot")

	assert.Equal(t, map[string]interface{}{"game": "g1"}, gameLog.Fields())
	assert.Empty(t, log.Fields(), "parent logger keeps its own fields")

	both := gameLog.WithFields(map[string]interface{}{"command": "status"})
	assert.Len(t, both.Fields(), 2)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
