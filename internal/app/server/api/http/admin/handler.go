package admin

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	vigilAPI "vigil/internal/app/server/api/http/vigil"
	"vigil/internal/domain/vigil"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("admin").Parse(pageSource))

type pageData struct {
	Vigils    []vigil.Vigil
	Timestamp string
	Signature string
}

type Handler struct {
	service    vigil.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

// NewHandler expects mws to contain the admin signature check.
func NewHandler(service vigil.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pageOp(), h.page)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) page(ctx context.Context, input *pageInput) (*pageOutput, error) {
	snap := h.service.List(ctx)
	data := pageData{
		Vigils:    sortedVigils(snap),
		Timestamp: input.Timestamp,
		Signature: input.Signature,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.log.Error("render admin page", "error", err)
		return nil, huma.Error500InternalServerError("Failed to render page")
	}

	return &pageOutput{
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	res, err := h.service.Delete(ctx, input.UUID)
	if err != nil {
		return nil, vigilAPI.HumaError(err)
	}

	h.log.Info("vigil deleted by admin", "uuid", res.UUID, "synced_to", res.SyncedTo)
	return &deleteOutput{
		Body: deleteResponse{
			Success:         true,
			UUID:            res.UUID,
			SyncedTo:        res.SyncedTo,
			RemainingVigils: res.RemainingVigils,
		},
	}, nil
}

// sortedVigils orders by event date and time, newest first.
func sortedVigils(snap vigil.Snapshot) []vigil.Vigil {
	out := make([]vigil.Vigil, 0, len(snap.Vigils))
	for _, v := range snap.Vigils {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Date+" "+out[i].Time, out[j].Date+" "+out[j].Time
		if ki != kj {
			return ki > kj
		}
		return out[i].UUID < out[j].UUID
	})
	return out
}
