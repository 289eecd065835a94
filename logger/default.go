package logger

import (
	"sync"

	"github.com/driftlog/driftlog/config"
	"github.com/driftlog/driftlog/core"
)

var (
	defaultMu     sync.RWMutex
	defaultCore   *core.Core
	defaultLogger *Logger
)

func init() {
	defaultCore = core.New()
	defaultLogger = New(defaultCore, "root", nil, nil, nil)
	if config.AutoInit() {
		// Best-effort: a broken profile name in the environment must
		// not prevent program startup.
		_ = ConfigureProfile(defaultCore, config.Profile(), ProfileOptions{})
	}
}

// Default returns the process-wide default logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// DefaultCore returns the Core behind the default logger.
func DefaultCore() *core.Core {
	return defaultCore
}

// Shutdown drains and tears down the default Core. Call it before
// process exit; the default pipeline must not be used afterwards.
func Shutdown() {
	defaultCore.Close()
}

// Package-level convenience functions delegating to the default logger.

// Debug logs a debug message using the default logger.
func Debug(msg string, kv ...any) { Default().Debug(msg, kv...) }

// Info logs an info message using the default logger.
func Info(msg string, kv ...any) { Default().Info(msg, kv...) }

// Warning logs a warning message using the default logger.
func Warning(msg string, kv ...any) { Default().Warning(msg, kv...) }

// Error logs an error message using the default logger.
func Error(msg string, kv ...any) { Default().Error(msg, kv...) }

// Critical logs a critical message using the default logger.
func Critical(msg string, kv ...any) { Default().Critical(msg, kv...) }

// Exception logs an error message with exception capture using the
// default logger.
func Exception(msg string, kv ...any) { Default().Exception(msg, kv...) }

// Log logs at an arbitrary level using the default logger.
func Log(level any, msg string, kv ...any) error { return Default().Log(level, msg, kv...) }

// Bind derives a logger with additional bound fields from the default
// logger.
func Bind(kv ...any) *Logger { return Default().Bind(kv...) }
