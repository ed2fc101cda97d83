package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rodmar-transportes/rodmar-backend/internal/observability"
	"github.com/rodmar-transportes/rodmar-backend/internal/saldos"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	SociosHandler        *socios.Handler
	ViajesHandler        *viajes.Handler
	TransaccionesHandler *transacciones.Handler
	SaldosHandler        *saldos.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router serving the RodMar API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.SociosHandler != nil {
			params.SociosHandler.MountRoutes(r)
		}
		if params.ViajesHandler != nil {
			r.Route("/viajes", params.ViajesHandler.MountRoutes)
		}
		if params.TransaccionesHandler != nil {
			r.Route("/transacciones", params.TransaccionesHandler.MountRoutes)
		}
		if params.SaldosHandler != nil {
			r.Route("/saldos", params.SaldosHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
