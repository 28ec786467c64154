package refresh_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/joshp123/acwatch/internal/refresh"
	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/unitsapi"
)

func TestOneCycleAgainstStubEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"name":"Living Room","state":{"power_status":"ON","mode":"COOL","target_temperature":22,"fan_mode":"AUTO","swing_mode":49,"power_selection":100,"merit_a":0,"merit_b":0,"air_pure_ion":16,"indoor_temp":22,"outdoor_temp":16,"self_cleaning":16}}]`)
	}))
	defer server.Close()

	client, err := unitsapi.NewClient(server.URL)
	require.NoError(t, err)

	clk := clockwork.NewFakeClock()
	st := store.New()
	updates, unsubscribe := st.Subscribe()
	defer unsubscribe()

	c, err := refresh.NewController(nil, refresh.Config{
		Clock:   clk,
		Fetcher: client,
		Store:   st,
		Name:    "e2e",
	})
	require.NoError(t, err)
	defer c.Stop()

	require.False(t, st.Get().IsLoaded())
	require.NoError(t, c.Start(context.Background()))

	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatalf("store was not updated")
	}

	got := st.Get()
	require.True(t, got.IsLoaded())
	require.Equal(t, 1, got.Len())

	unit := got.Units()[0]
	require.Equal(t, "Living Room", unit.Name)
	first := unit.Attributes.At(0)
	require.Equal(t, "power_status", first.Key)
	require.Equal(t, "ON", first.Value.String())
	require.Equal(t, 12, unit.Attributes.Len())
}
