package vigil

import (
	"context"
	"errors"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/replication"
	"vigil/internal/domain/vigil"
)

// IdentitySource exposes the remote identity in use, nil when degraded.
type IdentitySource interface {
	Identity() *replication.Identity
}

type Handler struct {
	service    vigil.Servicer
	identity   IdentitySource
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service vigil.Servicer, identity IdentitySource, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		identity:   identity,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.searchOp(), h.search)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.countOp(), h.count)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	res, err := h.service.Create(ctx, input.Body.Data.toDomain())
	if err != nil {
		return nil, HumaError(err)
	}

	return &createOutput{
		Body: createResponse{
			UUID:        res.Vigil.UUID,
			Vigil:       res.Vigil,
			SyncedTo:    res.SyncedTo,
			TotalVigils: res.TotalVigils,
		},
	}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	v, err := h.service.Find(ctx, input.UUID)
	if err != nil {
		return nil, HumaError(err)
	}

	return &findOutput{
		Body: findResponse{UUID: v.UUID, Data: *v},
	}, nil
}

func (h *Handler) search(ctx context.Context, input *searchInput) (*searchOutput, error) {
	res, err := h.service.Search(ctx, input.Zipcode)
	if err != nil {
		return nil, HumaError(err)
	}

	ranked := res.Vigils
	if ranked == nil {
		ranked = []vigil.Ranked{}
	}
	return &searchOutput{
		Body: searchResponse{
			Zipcode:      res.Zipcode,
			SearchRadius: res.SearchRadius,
			Vigils:       ranked,
			Count:        len(ranked),
		},
	}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	snap := h.service.List(ctx)

	var id *string
	if h.identity != nil {
		if cur := h.identity.Identity(); cur != nil {
			id = &cur.Primary
		}
	}

	return &listOutput{
		Body: listResponse{
			Vigils:      snap.Vigils,
			LastUpdated: snap.LastUpdated,
			TotalVigils: snap.TotalVigils,
			Identity:    id,
		},
	}, nil
}

func (h *Handler) count(ctx context.Context, _ *struct{}) (*countOutput, error) {
	c := h.service.Counts(ctx)
	return &countOutput{
		Body: countResponse{Total: c.Total, Today: c.Today},
	}, nil
}

// HumaError maps vigil service errors to HTTP errors. Replication failures
// carry one detail per endpoint.
func HumaError(err error) error {
	switch {
	case errors.Is(err, vigil.ErrInvalidData), errors.Is(err, vigil.ErrInvalidZipcode):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, vigil.ErrNotFound):
		return huma.Error404NotFound("Vigil not found")
	case errors.Is(err, vigil.ErrReplication):
		var details []error
		var rerr *vigil.ReplicationError
		if errors.As(err, &rerr) {
			endpoints := make([]string, 0, len(rerr.Reasons))
			for endpoint := range rerr.Reasons {
				endpoints = append(endpoints, endpoint)
			}
			sort.Strings(endpoints)
			for _, endpoint := range endpoints {
				details = append(details, &huma.ErrorDetail{Location: endpoint, Message: rerr.Reasons[endpoint]})
			}
		}
		return huma.Error500InternalServerError("Failed to sync with any replica", details...)
	default:
		return huma.Error500InternalServerError("Internal server error")
	}
}
