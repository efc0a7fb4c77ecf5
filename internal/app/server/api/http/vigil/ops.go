package vigil

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "vigil-create",
		Method:        http.MethodPost,
		Path:          "/api/bdo/create",
		Summary:       "Post a vigil",
		Description:   "Stores the vigil and replicates the full snapshot to every configured endpoint.",
		Tags:          []string{"vigils"},
		DefaultStatus: http.StatusOK,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "vigil-find",
		Method:      http.MethodGet,
		Path:        "/api/bdo/{uuid}",
		Summary:     "Get a vigil",
		Tags:        []string{"vigils"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) searchOp() huma.Operation {
	return huma.Operation{
		OperationID: "vigil-search",
		Method:      http.MethodGet,
		Path:        "/api/vigils/{zipcode}",
		Summary:     "Vigils near a zipcode",
		Description: "Returns vigils within the search radius, nearest first.",
		Tags:        []string{"vigils"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "vigil-list",
		Method:      http.MethodGet,
		Path:        "/api/vigils",
		Summary:     "All vigils",
		Tags:        []string{"vigils"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) countOp() huma.Operation {
	return huma.Operation{
		OperationID: "vigil-count",
		Method:      http.MethodGet,
		Path:        "/api/vigils-count",
		Summary:     "Vigil totals",
		Tags:        []string{"vigils"},
		Middlewares: h.middleware,
	}
}
