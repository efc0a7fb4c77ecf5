// GET    /api/zipcode-info/{zipcode}   upstream zipcode details
// POST   /api/bdo/create               post a vigil
// GET    /api/bdo/{uuid}               get a vigil
// GET    /api/vigils/{zipcode}         vigils near a zipcode
// GET    /api/vigils                   every vigil plus the remote identity
// GET    /api/vigils-count             totals
// GET    /admin                        moderation page (signed)
// DELETE /admin/delete/{uuid}          delete a vigil (signed)
// GET    /api/v1/health
// GET    /metrics

package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	adminAPI "vigil/internal/app/server/api/http/admin"
	healthAPI "vigil/internal/app/server/api/http/health"
	"vigil/internal/app/server/api/http/middleware"
	"vigil/internal/app/server/api/http/middleware/adminauth"
	"vigil/internal/app/server/api/http/middleware/logger"
	vigilAPI "vigil/internal/app/server/api/http/vigil"
	zipcodeAPI "vigil/internal/app/server/api/http/zipcode"
	"vigil/internal/app/server/metrics"
	"vigil/internal/domain/vigil"
)

// Deps are the domain services the HTTP surface is built on.
type Deps struct {
	Vigils   vigil.Servicer
	Identity vigilAPI.IdentitySource
	// Replication is usually the same coordinator as Identity.
	Replication healthAPI.ReplicationState
	Zipcodes zipcodeAPI.Looker
	Admin    adminauth.Checker
	Metrics  *metrics.Metrics
}

type Handlers struct {
	Health  *healthAPI.Handler
	Zipcode *zipcodeAPI.Handler
	Vigil   *vigilAPI.Handler
	Admin   *adminAPI.Handler
}

// New builds the router with every operation registered through huma.
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)

	config := huma.DefaultConfig("Vigil API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Zipcode.SetupRoutes(API)
	h.Vigil.SetupRoutes(API)
	h.Admin.SetupRoutes(API)

	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	var observer logger.RequestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	loggerMW := logger.New(log, observer)
	adminMW := adminauth.New(deps.Admin, log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.Replication, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	zipcodeHandler := zipcodeAPI.NewHandler(deps.Zipcodes, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	vigilHandler := vigilAPI.NewHandler(deps.Vigils, deps.Identity, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(adminMW.Middleware())
	adminHandler := adminAPI.NewHandler(deps.Vigils, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Zipcode: zipcodeHandler,
		Vigil:   vigilHandler,
		Admin:   adminHandler,
	}
}
