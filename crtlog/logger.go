// Package crtlog wires a package-level, swappable structured logger for the
// runtime's components, modeled on eventloop/logging.go's global-logger
// shape, but backed by a real dependency from the pack instead of a
// hand-rolled LogEntry type: github.com/joeycumines/logiface (the fluent,
// generic Logger[E Event] facade) fronting
// github.com/joeycumines/logiface-slog (package islog), which bridges to
// log/slog.
//
// Every executor, the result state machine, and the timer queue log through
// here rather than taking a logger dependency of their own, so a caller that
// never touches crtlog gets slog.Default()'s handler for free.
package crtlog

import (
	"log/slog"
	"sync"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Logger is the concrete logger type every component in this module logs
// through.
type Logger = logiface.Logger[*islog.Event]

var (
	mu      sync.RWMutex
	current *Logger
)

func init() {
	current = New(slog.Default().Handler())
}

// New builds a Logger writing through handler, with any additional logiface
// options applied (e.g. logiface.WithLevel to filter below Informational).
func New(handler slog.Handler, opts ...logiface.Option[*islog.Event]) *Logger {
	all := make([]logiface.Option[*islog.Event], 0, len(opts)+1)
	all = append(all, islog.L.WithSlogHandler(handler))
	all = append(all, opts...)
	return islog.L.New(all...)
}

// SetHandler replaces the package-level default logger's slog backend. It is
// safe to call concurrently with logging from any component.
func SetHandler(handler slog.Handler, opts ...logiface.Option[*islog.Event]) {
	l := New(handler, opts...)
	mu.Lock()
	current = l
	mu.Unlock()
}

// SetLogger replaces the package-level default logger outright, for callers
// that built their own Logger (e.g. with extra logiface middleware).
func SetLogger(l *Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	current = l
	mu.Unlock()
}

// Default returns the current package-level logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
