// Package logging provides a runtime.Logger for binaries that run outside Nakama.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Logger adapts a slog.Logger to Nakama's printf-style runtime.Logger so the
// app layer logs the same way in and out of the Nakama runtime.
type Logger struct {
	l      *slog.Logger
	fields map[string]interface{}
}

// New returns a text logger on stdout at the given level name.
func New(level string) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter returns a text logger writing to w.
func NewWithWriter(w io.Writer, level string) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{l: slog.New(h).With("service", "refbot")}
}

// ParseLevel maps debug/info/warn/error to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (g *Logger) Debug(format string, v ...interface{}) {
	g.l.Debug(fmt.Sprintf(format, v...))
}

func (g *Logger) Info(format string, v ...interface{}) {
	g.l.Info(fmt.Sprintf(format, v...))
}

func (g *Logger) Warn(format string, v ...interface{}) {
	g.l.Warn(fmt.Sprintf(format, v...))
}

func (g *Logger) Error(format string, v ...interface{}) {
	g.l.Error(fmt.Sprintf(format, v...))
}

func (g *Logger) WithField(key string, v interface{}) runtime.Logger {
	return g.WithFields(map[string]interface{}{key: v})
}

func (g *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(g.fields)+len(fields))
	maps.Copy(merged, g.fields)
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &Logger{l: g.l.With(args...), fields: merged}
}

func (g *Logger) Fields() map[string]interface{} {
	return maps.Clone(g.fields)
}

var _ runtime.Logger = (*Logger)(nil)
