// Package applog provides the structured logger shared by every daemon
// component, layered on top of zerolog. It is purely observability: the
// plain-text .autogit.log written by internal/retry is the on-disk contract
// callers may parse, and this package never replaces it.
package applog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// SetOutput redirects where log records are written; by default they go to
// standard error.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the minimum level emitted, across all components.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Logger is a component-scoped logger. Every record it emits carries the
// component tag and, once bound via WithRepo, the repository root.
type Logger struct {
	component string
	repoRoot  string
}

// For returns a Logger tagged with component, one of pathclass, config,
// vcsdriver, retry, watch, daemon, or supervisor.
func For(component string) Logger {
	return Logger{component: component}
}

// WithRepo returns a copy of l additionally tagged with repoRoot.
func (l Logger) WithRepo(repoRoot string) Logger {
	l.repoRoot = repoRoot
	return l
}

func (l Logger) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("component", l.component)
	if l.repoRoot != "" {
		e = e.Str("repo_root", l.repoRoot)
	}
	return e
}

// Info logs an informational message.
func (l Logger) Info(msg string) {
	mu.Lock()
	logger := base
	mu.Unlock()
	l.event(logger.Info()).Msg(msg)
}

// Error logs an error, attaching err when non-nil.
func (l Logger) Error(err error, msg string) {
	mu.Lock()
	logger := base
	mu.Unlock()
	ev := logger.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.event(ev).Msg(msg)
}

// Debug logs a debug-level message.
func (l Logger) Debug(msg string) {
	mu.Lock()
	logger := base
	mu.Unlock()
	l.event(logger.Debug()).Msg(msg)
}
