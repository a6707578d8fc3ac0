// Package bcf2log provides the structured logger the CLI commands use
// to report stream-level events (header parsed, record counts, the
// first decode error hit during validation) separately from the errors
// the codec itself returns to its caller.
package bcf2log

import (
	"fmt"
	"log/slog"
	"os"
)

// LevelVerbose sits below slog's Debug level, for per-record tracing
// that would otherwise flood -debug output.
const LevelVerbose = slog.Level(-8)

func levelVar(level string) *slog.LevelVar {
	lv := &slog.LevelVar{}
	switch level {
	case "verbose":
		lv.Set(LevelVerbose)
	case "debug":
		lv.Set(slog.LevelDebug)
	case "", "info":
		lv.Set(slog.LevelInfo)
	case "warn":
		lv.Set(slog.LevelWarn)
	default:
		fmt.Fprintf(os.Stderr, "bcf2log: unrecognized level %q, defaulting to info\n", level)
		lv.Set(slog.LevelInfo)
	}
	return lv
}

// New builds a console logger at level, plus a second logger writing
// to logFilePath when one is given (nil otherwise). Matches the
// console-plus-optional-file split the CLI's predecessor used.
func New(level, logFilePath string) (console, file *slog.Logger) {
	opts := &slog.HandlerOptions{Level: levelVar(level)}
	console = slog.New(slog.NewTextHandler(os.Stderr, opts))

	if logFilePath == "" {
		return console, nil
	}
	fh, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		console.Error("unable to open log file, logging to stderr only", "path", logFilePath, "error", err)
		return console, nil
	}
	file = slog.New(slog.NewTextHandler(fh, opts))
	return console, file
}
