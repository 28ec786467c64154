package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/units"
	"github.com/joshp123/acwatch/internal/unitsapi"
	"github.com/joshp123/acwatch/internal/view"
)

type stubProvider struct{}

func (stubProvider) ID() string { return "stub" }

func (stubProvider) Manifest() core.Manifest {
	return core.Manifest{ProviderID: "stub", DisplayName: "Stub", Version: "0.1.0"}
}

func (stubProvider) Units(context.Context) ([]units.Snapshot, error) { return nil, nil }

func (stubProvider) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "overview", JSON: []byte(`{"title":"stub"}`)}}
}

func (stubProvider) Collectors() []prometheus.Collector { return nil }

func (stubProvider) Health() core.HealthStatus { return core.HealthDegraded }

func (stubProvider) HealthMessage() string { return "upstream slow" }

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New()
	registry := core.NewRegistry([]core.Provider{stubProvider{}})
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "acwatch_test_total", Help: "test"})
	counter.Inc()

	srv := httptest.NewServer(NewMux(Routes{
		Store:    st,
		Registry: registry,
		Metrics:  core.MetricsRegistry(registry.Providers(), counter),
	}))
	t.Cleanup(srv.Close)
	return srv, st
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	code, body := get(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)
}

func TestUnitsUnavailableBeforeLoad(t *testing.T) {
	srv, _ := newTestServer(t)
	code, _ := get(t, srv.URL+unitsapi.UnitsPath)
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestUnitsServesStoreInOrder(t *testing.T) {
	srv, st := newTestServer(t)
	st.Set(units.Loaded([]units.Snapshot{{
		Name: "Living Room",
		Attributes: units.NewAttributes(
			units.Attribute{Key: "power_status", Value: units.String("ON")},
			units.Attribute{Key: "mode", Value: units.String("COOL")},
			units.Attribute{Key: "target_temperature", Value: units.Number(22)},
		),
	}}))

	code, body := get(t, srv.URL+unitsapi.UnitsPath)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `[{"name":"Living Room","state":{"power_status":"ON","mode":"COOL","target_temperature":22}}]`, body)
	require.Less(t, strings.Index(body, "power_status"), strings.Index(body, "target_temperature"))

	client, err := unitsapi.NewClient(srv.URL)
	require.NoError(t, err)
	snaps, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.Equal(t, []string{"power_status", "mode", "target_temperature"}, snaps[0].Attributes.Keys())
}

func TestUnitsLoadedEmpty(t *testing.T) {
	srv, st := newTestServer(t)
	st.Set(units.Loaded(nil))
	code, body := get(t, srv.URL+unitsapi.UnitsPath)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "[]", strings.TrimSpace(body))
}

func TestPage(t *testing.T) {
	srv, st := newTestServer(t)

	code, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, view.Placeholder)
	require.Contains(t, body, `http-equiv="refresh"`)

	st.Set(units.Loaded([]units.Snapshot{{
		Name:       "Kitchen",
		Attributes: units.NewAttributes(units.Attribute{Key: "mode", Value: units.String("HEAT")}),
	}}))
	_, body = get(t, srv.URL+"/")
	require.Contains(t, body, view.Title)
	require.Contains(t, body, "Kitchen")
	require.NotContains(t, body, view.Placeholder)

	code, _ = get(t, srv.URL+"/nope")
	require.Equal(t, http.StatusNotFound, code)
}

func TestProviders(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := get(t, srv.URL+"/api/providers")
	require.Equal(t, http.StatusOK, code)
	var list []core.ProviderSummary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	require.Equal(t, "DEGRADED", list[0].Status)
	require.Equal(t, "upstream slow", list[0].HealthMessage)

	code, _ = get(t, srv.URL+"/api/providers/stub")
	require.Equal(t, http.StatusOK, code)
	code, _ = get(t, srv.URL+"/api/providers/missing")
	require.Equal(t, http.StatusNotFound, code)
}

func TestDashboardsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := get(t, srv.URL+"/dashboards/stub/overview.json")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"title":"stub"}`, body)

	code, _ = get(t, srv.URL+"/dashboards/stub/missing.json")
	require.Equal(t, http.StatusNotFound, code)

	code, body = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "acwatch_test_total 1")
}
