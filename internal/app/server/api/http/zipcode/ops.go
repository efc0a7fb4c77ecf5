package zipcode

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) infoOp() huma.Operation {
	return huma.Operation{
		OperationID: "zipcode-info",
		Method:      http.MethodGet,
		Path:        "/api/zipcode-info/{zipcode}",
		Summary:     "Zipcode details from the upstream geocoder",
		Tags:        []string{"zipcode"},
		Middlewares: h.middleware,
	}
}
