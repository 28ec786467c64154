package router

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/units"
)

type stubProvider struct {
	id     string
	health atomic.Value
}

func newStub(id string, status core.HealthStatus) *stubProvider {
	s := &stubProvider{id: id}
	s.health.Store(status)
	return s
}

func (s *stubProvider) ID() string { return s.id }

func (s *stubProvider) Manifest() core.Manifest { return core.Manifest{ProviderID: s.id} }

func (s *stubProvider) Dashboards() []core.Dashboard { return nil }

func (s *stubProvider) Collectors() []prometheus.Collector { return nil }

func (s *stubProvider) Health() core.HealthStatus { return s.health.Load().(core.HealthStatus) }

func (s *stubProvider) HealthMessage() string { return "" }

func (s *stubProvider) Units(context.Context) ([]units.Snapshot, error) { return nil, nil }

func check(t *testing.T, hs *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestRegisterProviders(t *testing.T) {
	hs := health.NewServer()
	ok := newStub("toshiba", core.HealthDegraded)
	bad := newStub("other", core.HealthError)

	RegisterProviders(hs, []core.Provider{ok})
	if got := check(t, hs, "acwatch.toshiba"); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected degraded provider to keep serving, got %s", got)
	}
	if got := check(t, hs, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected overall SERVING, got %s", got)
	}

	RegisterProviders(hs, []core.Provider{ok, bad})
	if got := check(t, hs, "acwatch.other"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %s", got)
	}
	if got := check(t, hs, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected overall NOT_SERVING, got %s", got)
	}
}

func TestSyncHealthFollowsProvider(t *testing.T) {
	hs := health.NewServer()
	clock := clockwork.NewFakeClock()
	p := newStub("toshiba", core.HealthHealthy)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		SyncHealth(ctx, clock, time.Second, hs, []core.Provider{p})
	}()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker: %v", err)
	}
	if got := check(t, hs, "acwatch.toshiba"); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", got)
	}

	p.health.Store(core.HealthError)
	clock.Advance(time.Second)

	deadline := time.After(time.Second)
	for check(t, hs, "acwatch.toshiba") != healthpb.HealthCheckResponse_NOT_SERVING {
		select {
		case <-deadline:
			t.Fatalf("health never flipped to NOT_SERVING")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
