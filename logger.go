package lasca

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for lasca and its backends.
// By default, lasca produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default. The logger is propagated to every open backend that accepts one.
//
// Log levels used by lasca:
//   - [slog.LevelDebug]: per-tick diagnostics (dispatch regions, timings)
//   - [slog.LevelInfo]: lifecycle events (backend selected, stream rewound)
//   - [slog.LevelWarn]: non-fatal issues (GPU unavailable, software fallback)
//
// Example:
//
//	lasca.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	liveMu.Lock()
	defer liveMu.Unlock()
	for b := range live {
		propagateLogger(b, l)
	}
}

// Logger returns the current logger used by lasca. Backend packages call
// this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(b Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// live is the set of backends owned by open pipelines.
var (
	liveMu sync.Mutex
	live   = map[Backend]struct{}{}
)

func track(b Backend) {
	liveMu.Lock()
	live[b] = struct{}{}
	liveMu.Unlock()
	propagateLogger(b, Logger())
}

func untrack(b Backend) {
	liveMu.Lock()
	delete(live, b)
	liveMu.Unlock()
}
