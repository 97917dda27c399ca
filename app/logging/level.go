package logging

import (
	"io"
	"log/slog"
)

// LevelForVerbosity maps the number of -v flags to a log level:
// none shows warnings, one or two show info, three or more show debug.
func LevelForVerbosity(count int) slog.Level {
	switch {
	case count >= 3:
		return slog.LevelDebug
	case count >= 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Setup installs a colored handler as the default slog logger.
func Setup(out io.Writer, verbosity int) *slog.Logger {
	logger := slog.New(NewHandler(out, LevelForVerbosity(verbosity)))
	slog.SetDefault(logger)
	return logger
}
