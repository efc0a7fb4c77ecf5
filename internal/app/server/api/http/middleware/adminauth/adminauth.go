package adminauth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/admin"
)

// Checker validates a signed admin timestamp.
type Checker interface {
	Check(timestamp, signature string) error
}

type AdminAuth struct {
	checker Checker
	log     *slog.Logger
}

func New(checker Checker, log *slog.Logger) *AdminAuth {
	return &AdminAuth{
		checker: checker,
		log:     log.With(slog.String("component", "admin_auth")),
	}
}

// Middleware rejects requests whose timestamp/signature query parameters do
// not pass the admin check.
func (a *AdminAuth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		err := a.checker.Check(ctx.Query("timestamp"), ctx.Query("signature"))
		if err == nil {
			next(ctx)
			return
		}

		status := StatusFor(err)
		a.log.Warn("admin request rejected",
			slog.String("path", ctx.URL().Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)

		ctx.SetStatus(status)
		ctx.SetHeader("Content-Type", "application/json")
		if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
			"error": err.Error(),
		}); err != nil {
			a.log.Error("encode error response", slog.String("error", err.Error()))
		}
	}
}

// StatusFor maps an admin check failure to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, admin.ErrMissingParams):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrExpired):
		return http.StatusUnauthorized
	case errors.Is(err, admin.ErrBadSignature):
		return http.StatusForbidden
	case errors.Is(err, admin.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
