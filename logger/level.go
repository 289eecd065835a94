package logger

import "github.com/driftlog/driftlog/core"

// Level re-exports for convenience so most callers only import logger.
type Level = core.Level

var (
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	WarningLevel  = core.WarningLevel
	ErrorLevel    = core.ErrorLevel
	CriticalLevel = core.CriticalLevel
)

// Lazy re-exports the deferred-value type; a Lazy in kwargs, extra or
// args is resolved on the worker only if the record survives filtering.
type Lazy = core.Lazy
