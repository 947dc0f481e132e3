package debug

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards everything and reports itself disabled,
// so callers skip formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var (
	logger  atomic.Pointer[slog.Logger]
	enabled atomic.Bool
)

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetOutput sets the debug output destination. A nil writer or io.Discard
// turns logging back off.
func SetOutput(w io.Writer) {
	if w == nil || w == io.Discard {
		SetLogger(nil)
		return
	}
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// SetLogger installs l as the debug logger; nil restores the silent default
func SetLogger(l *slog.Logger) {
	if l == nil {
		logger.Store(slog.New(nopHandler{}))
		enabled.Store(false)
		return
	}
	logger.Store(l)
	enabled.Store(true)
}

// Logger returns the current debug logger
func Logger() *slog.Logger {
	return logger.Load()
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled.Load()
}
