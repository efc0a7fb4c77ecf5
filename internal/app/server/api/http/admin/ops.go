package admin

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pageOp() huma.Operation {
	return huma.Operation{
		OperationID: "admin-page",
		Method:      http.MethodGet,
		Path:        "/admin",
		Summary:     "Moderation page",
		Description: "HTML listing of every vigil with delete controls. Requires a signed timestamp.",
		Tags:        []string{"admin"},
		Middlewares: h.middleware,
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Moderation page",
				Content:     map[string]*huma.MediaType{"text/html": {}},
			},
		},
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "admin-delete",
		Method:      http.MethodDelete,
		Path:        "/admin/delete/{uuid}",
		Summary:     "Delete a vigil",
		Tags:        []string{"admin"},
		Middlewares: h.middleware,
	}
}
