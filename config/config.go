// Package config resolves environment-derived defaults for the logging
// pipeline. A .env file in the working directory is honored when
// present; real environment variables win over it, which is godotenv's
// default behavior.
//
// Recognized variables:
//
//	DRIFTLOG_LEVEL         default level for new handlers (default "DEBUG")
//	DRIFTLOG_PROFILE       configuration profile applied at autoinit (default "default")
//	DRIFTLOG_AUTOINIT      whether the package-level logger configures itself (default true)
//	DRIFTLOG_WAIT_TIMEOUT  barrier wait timeout in seconds (default 5)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	envLevel       = "DRIFTLOG_LEVEL"
	envProfile     = "DRIFTLOG_PROFILE"
	envAutoInit    = "DRIFTLOG_AUTOINIT"
	envWaitTimeout = "DRIFTLOG_WAIT_TIMEOUT"
)

var loadOnce sync.Once

// load reads a .env file once, best-effort. Missing files are fine.
func load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// String returns the value of key, or def when unset.
func String(key, def string) string {
	load()
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// Bool parses a boolean environment variable. Accepted true values:
// 1, true, yes, y, ok, on; false values: 0, false, no, n, nok, off.
func Bool(key string, def bool) (bool, error) {
	load()
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "ok", "on":
		return true, nil
	case "0", "false", "no", "n", "nok", "off":
		return false, nil
	}
	return def, fmt.Errorf("invalid environment variable %s (expected a boolean): %q", key, v)
}

// Int parses an integer environment variable.
func Int(key string, def int) (int, error) {
	load()
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid environment variable %s (expected an integer): %q", key, v)
	}
	return n, nil
}

// Level returns the default handler level name.
func Level() string {
	return String(envLevel, "DEBUG")
}

// Profile returns the configuration profile name applied at autoinit.
func Profile() string {
	return String(envProfile, "default")
}

// AutoInit reports whether the default logger should configure itself
// at package initialization. Parse errors fall back to true.
func AutoInit() bool {
	v, err := Bool(envAutoInit, true)
	if err != nil {
		return true
	}
	return v
}

// WaitTimeout bounds barrier waits against a stalled or stopped worker.
func WaitTimeout() time.Duration {
	secs, err := Int(envWaitTimeout, 5)
	if err != nil || secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}
