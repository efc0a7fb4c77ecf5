package health

import (
	"context"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/replication"
)

// ReplicationState is what the probe needs from the replication coordinator.
type ReplicationState interface {
	Identity() *replication.Identity
	Endpoints() []string
}

type Handler struct {
	replication ReplicationState
	log         *slog.Logger
	middleware  huma.Middlewares
}

func NewHandler(state ReplicationState, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		replication: state,
		log:         log,
		middleware:  middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	resp := Response{
		Status:      StatusDegraded,
		Endpoints:   h.replication.Endpoints(),
		Replicating: []string{},
	}

	if id := h.replication.Identity(); id != nil {
		primary := id.Primary
		resp.Status = StatusOK
		resp.Identity = &primary
		for name := range id.Endpoints {
			resp.Replicating = append(resp.Replicating, name)
		}
		sort.Strings(resp.Replicating)
	}

	h.log.Debug("health check", "status", resp.Status)
	return &Output{Body: resp}, nil
}
