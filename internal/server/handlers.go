package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/units"
	"github.com/joshp123/acwatch/internal/view"
)

// HealthHandler returns a simple OK for liveness checks.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// UnitsHandler serves the stored collection as a JSON array, or 503 until
// the first upstream fetch has succeeded.
func UnitsHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		collection := st.Get()
		if !collection.IsLoaded() {
			http.Error(w, "units not loaded yet", http.StatusServiceUnavailable)
			return
		}
		data, err := units.Encode(collection.Units())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// PageHandler renders the store as an HTML page that reloads itself every
// refreshSecs seconds.
func PageHandler(st *store.Store, refreshSecs int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := view.WriteHTML(w, view.Project(st.Get()), refreshSecs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// ProvidersHandler lists providers and their health; /api/providers/<id>
// describes a single one.
func ProvidersHandler(registry *core.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/providers"), "/")
		var body any
		if id == "" {
			body = registry.List()
		} else {
			summary, ok := registry.Describe(id)
			if !ok {
				http.NotFound(w, r)
				return
			}
			body = summary
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
}
