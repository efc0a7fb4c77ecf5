package logger

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// RequestObserver counts handled requests. Implemented by metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(operation string, status int)
}

// Logger logs every handled HTTP request.
type Logger struct {
	log      *slog.Logger
	observer RequestObserver
}

func New(log *slog.Logger, observer RequestObserver) *Logger {
	return &Logger{
		log:      log.With(slog.String("component", "http_logger")),
		observer: observer,
	}
}

func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		method := ctx.Method()
		path := ctx.URL().Path
		remoteAddr := ctx.RemoteAddr()

		next(ctx)

		duration := time.Since(start)
		status := ctx.Status()

		operation := ""
		if op := ctx.Operation(); op != nil {
			operation = op.OperationID
		}
		if l.observer != nil {
			l.observer.ObserveRequest(operation, status)
		}

		l.log.Info("HTTP request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("operation", operation),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("remote_addr", remoteAddr),
		)
	}
}
