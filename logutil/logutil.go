// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvDebug enables debug logging when set to "true".
const EnvDebug = "FILEEX_DEBUG"

// Handler formats accepted by SetupLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidLevel is returned by ParseLevel for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

var (
	// level is shared by every handler SetupLogger builds, so SetLevel
	// also applies to component loggers created earlier.
	level = new(slog.LevelVar)

	mu   sync.RWMutex
	root *slog.Logger
)

func init() {
	SetupLogger(os.Stderr, FormatText)
}

// SetupLogger installs a handler writing to w as the process logger and as
// slog's default. Format is FormatText or FormatJSON; anything else is text.
// The level is left as it is.
func SetupLogger(w io.Writer, format string) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	mu.Lock()
	root = logger
	mu.Unlock()
	slog.SetDefault(logger)
}

// SetLevel sets the minimum level logged by every logger from this package.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel parses debug, info, warn (or warning) and error, ignoring case.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w %q (valid options: debug, info, warn, error)", ErrInvalidLevel, s)
	}
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Debug logs at debug level on the process logger.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs at warn level on the process logger.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}
