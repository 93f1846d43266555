package capture

import (
	"context"
	"log/slog"
	"strings"

	"github.com/smazurov/vhsnode/internal/metrics"
)

// outputLevel picks the application log level for one encoder output line.
// Lines carrying an explicit "[level] " tag (-loglevel level+info), possibly
// after a "[component @ 0x...] " prefix, use that tag. Untagged lines are
// classified by the phrases ffmpeg uses for failures.
func outputLevel(line string) slog.Level {
	if level, ok := taggedLevel(line); ok {
		return level
	}
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "conversion failed"),
		strings.Contains(lower, "error"),
		strings.Contains(lower, "no such file or directory"),
		strings.Contains(lower, "device or resource busy"):
		return slog.LevelError
	case strings.Contains(lower, "invalid"),
		strings.Contains(lower, "past duration too large"),
		strings.Contains(lower, "buffer queue overflow"):
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

func taggedLevel(line string) (slog.Level, bool) {
	for range 2 {
		if len(line) < 3 || line[0] != '[' {
			return 0, false
		}
		end := strings.Index(line, "] ")
		if end == -1 {
			return 0, false
		}
		switch line[1:end] {
		case "panic", "fatal", "error":
			return slog.LevelError, true
		case "warning":
			return slog.LevelWarn, true
		case "info":
			return slog.LevelInfo, true
		case "verbose", "debug", "trace":
			return slog.LevelDebug, true
		}
		// Component prefix, the level tag may follow.
		line = line[end+2:]
	}
	return 0, false
}

// logOutputLine writes an encoder line to logger. Progress lines are frequent
// and already exported as metrics, so they only appear at debug level.
func logOutputLine(logger *slog.Logger, jobID, line string) {
	if logger == nil {
		return
	}
	level := outputLevel(line)
	if _, ok := metrics.ParseProgress(line); ok {
		level = slog.LevelDebug
	}
	if !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, line, "job_id", jobID)
}
