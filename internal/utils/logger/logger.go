package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"vigil/internal/app/server/config"
)

// New returns a logger configured for the given environment.
// local: colored human-readable output, debug level
// dev:   JSON, debug level
// prod:  JSON, info level
// A non-empty level (debug, info, warn, error) overrides the environment default.
func New(env, level string) *slog.Logger {
	lvl := defaultLevel(env)
	if level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(level)); err == nil {
			lvl = parsed
		}
	}

	if env == config.EnvLocal {
		return setupPrettySlog(lvl)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func defaultLevel(env string) slog.Level {
	switch env {
	case config.EnvLocal, config.EnvDev:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests and CLI tools.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
