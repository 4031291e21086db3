package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ibexHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
type ibexHandler struct {
	w     io.Writer
	runID string
	min   slog.Level
	attrs []slog.Attr
}

func (h *ibexHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *ibexHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	level := r.Level.String()

	_, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%s", ts, level, h.runID, r.Message)
	if err != nil {
		return err
	}

	// Write pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
		return true
	})

	_, err = fmt.Fprintln(h.w)
	return err
}

func (h *ibexHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ibexHandler{
		w:     h.w,
		runID: h.runID,
		min:   h.min,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *ibexHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to both a rotating
// logDir/ibex.log and stderr. Verbose mode lowers the level to Debug so the
// degraded-path diagnostics become visible.
// It returns the slog.Logger and the log file writer (for cleanup).
func newLogger(logDir string, runID string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "ibex.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}

	min := slog.LevelInfo
	if verbose {
		min = slog.LevelDebug
	}

	w := io.MultiWriter(rotating, os.Stderr)
	handler := &ibexHandler{w: w, runID: runID, min: min}
	return slog.New(handler), rotating, nil
}

// slogAdapter wraps *slog.Logger to satisfy the extract.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
