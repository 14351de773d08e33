// Package logger provides the process-wide structured logger.
// All extraction diagnostics route through the package-level helpers.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Log is the global logger. Init replaces it; the default writes INFO and
// above to stderr so packages can log before main configures anything.
var Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

func parseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger at the given level
func Init(levelStr string) {
	level.Set(parseLevel(levelStr))
	Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLevel changes the log level of the current logger
func SetLevel(levelStr string) {
	level.Set(parseLevel(levelStr))
}

func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Fatal logs at error level and exits the process
func Fatal(msg string, args ...any) {
	Log.Error(msg, args...)
	os.Exit(1)
}
