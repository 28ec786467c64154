package router

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joshp123/acwatch/internal/core"
)

const servicePrefix = "acwatch."

// ServiceName is the gRPC health service name reported for a provider.
func ServiceName(providerID string) string {
	return servicePrefix + providerID
}

// RegisterProviders publishes the current health of every provider, plus the
// overall "" service, on the gRPC health server.
func RegisterProviders(hs *health.Server, providers []core.Provider) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, p := range providers {
		status := servingStatus(p.Health())
		hs.SetServingStatus(ServiceName(p.ID()), status)
		if status != healthpb.HealthCheckResponse_SERVING {
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	hs.SetServingStatus("", overall)
}

// SyncHealth re-publishes provider health every interval until ctx ends.
func SyncHealth(ctx context.Context, clock clockwork.Clock, interval time.Duration, hs *health.Server, providers []core.Provider) {
	RegisterProviders(hs, providers)
	if interval <= 0 {
		return
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			RegisterProviders(hs, providers)
		}
	}
}

// Degraded providers keep serving stale data, so only ERROR maps to NOT_SERVING.
func servingStatus(status core.HealthStatus) healthpb.HealthCheckResponse_ServingStatus {
	if status == core.HealthError {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
