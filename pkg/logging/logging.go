// Package logging provides the engine's structured logging, built on
// go.uber.org/zap.
//
// Every Interpreter owns a *zap.Logger (a no-op one unless the host passes
// its own). The guest console built-ins write through it at the matching
// level, and interp.New logs a polyfill bootstrap failure at Error with
// the session id attached. The engine logs nothing else: step dispatch,
// regex timeouts and invariant panics are not logged.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a development-style logger (human-readable console output) at the
// given level. Hosts that want JSON output for machine parsing should
// build their own zap.Logger and pass it to interp.WithLogger instead.
func New(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		// zap's own construction failing is itself an internal invariant
		// violation of the host environment; there is nothing sensible to
		// log it with, so fall back to a no-op logger.
		return zap.NewNop()
	}
	return logger
}

// Nop returns a logger that discards everything, the default for a freshly
// constructed Interpreter so embedding stays silent unless the host opts
// in.
func Nop() *zap.Logger {
	return zap.NewNop()
}
