package framerender

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for framerender and its sub-packages.
// By default, framerender produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used:
//   - [slog.LevelDebug]: resource allocation sizes, dropped readbacks
//   - [slog.LevelInfo]: lifecycle events (unit released, backend selected)
//   - [slog.LevelWarn]: non-fatal issues (filter release errors)
//
// Example:
//
//	framerender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages (backend/native,
// backend/software, filter) call this to share one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
