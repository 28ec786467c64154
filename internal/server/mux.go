package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/unitsapi"
)

// PageRefreshSeconds matches the dashboard polling cadence.
const PageRefreshSeconds = 1

// Routes wires every bridge HTTP endpoint.
type Routes struct {
	Store    *store.Store
	Registry *core.Registry
	Metrics  *prometheus.Registry
}

func NewMux(routes Routes) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthHandler)
	mux.Handle("GET "+unitsapi.UnitsPath, UnitsHandler(routes.Store))
	mux.Handle("GET /", PageHandler(routes.Store, PageRefreshSeconds))
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", MetricsHandler(routes.Metrics))
	}
	if routes.Registry != nil {
		mux.Handle("GET /api/providers", ProvidersHandler(routes.Registry))
		mux.Handle("GET /api/providers/", ProvidersHandler(routes.Registry))
		mux.Handle("GET /dashboards/", DashboardsHandler(core.DashboardsMap(routes.Registry.Providers())))
	}
	return mux
}
