package zipcode

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/geo"
	"vigil/internal/domain/vigil"
)

// Looker fetches upstream zipcode details.
type Looker interface {
	Lookup(ctx context.Context, zipcode string) (*geo.ZipInfo, error)
}

type Handler struct {
	looker     Looker
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(looker Looker, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		looker:     looker,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.infoOp(), h.info)
}

func (h *Handler) info(ctx context.Context, input *infoInput) (*infoOutput, error) {
	if !vigil.ValidZipcode(input.Zipcode) {
		return nil, huma.Error400BadRequest("Invalid zipcode format")
	}

	info, err := h.looker.Lookup(ctx, input.Zipcode)
	if err != nil {
		h.log.Error("zipcode lookup failed", "zipcode", input.Zipcode, "error", err)
		return nil, huma.Error500InternalServerError("Failed to fetch zipcode info")
	}

	return &infoOutput{Body: info}, nil
}
