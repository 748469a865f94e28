package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dsa-lake/data-lander/constants"
	pconstants "github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/sanitize"
)

// Initialize sets the default logger to a JSON logger on stderr, at the level named by the
// DATA_LANDER_LOG_LEVEL environment variable, tagged with the execution id
func Initialize(executionId string) {
	logger := NewLogger(os.Stderr, LogLevel(os.Getenv(constants.EnvLogLevel)))
	if executionId != "" {
		logger = logger.With("execution_id", executionId)
	}
	slog.SetDefault(logger)
}

// NewLogger returns a logger that writes JSON to w and sanitizes log entries
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	if level == pconstants.LogLevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// errors are rendered as their message rather than an empty object
			if err, ok := a.Value.Any().(error); ok {
				a.Value = slog.StringValue(err.Error())
			}
			sanitized := sanitize.Instance.SanitizeKeyValue(a.Key, a.Value.Any())

			return slog.Attr{
				Key:   a.Key,
				Value: slog.AnyValue(sanitized),
			}
		},
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions)).With("source", constants.AppName)
}

// LogLevel parses a level name; unknown or empty names give info
func LogLevel(name string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off":
		return pconstants.LogLevelOff
	default:
		return slog.LevelInfo
	}
}
