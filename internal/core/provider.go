package core

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/acwatch/internal/units"
)

// HealthStatus represents provider health states for registry reporting.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthError    HealthStatus = "ERROR"
)

// Dashboard is a Grafana dashboard asset embedded by the provider.
type Dashboard struct {
	Name string
	JSON []byte
}

// Manifest describes a provider for discovery and registry metadata.
type Manifest struct {
	ProviderID  string
	DisplayName string
	Version     string
}

// Provider is the compile-time contract for every upstream AC source.
type Provider interface {
	ID() string
	Manifest() Manifest
	Units(ctx context.Context) ([]units.Snapshot, error)
	Dashboards() []Dashboard
	Collectors() []prometheus.Collector
	Health() HealthStatus
	HealthMessage() string
}
