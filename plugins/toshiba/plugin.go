package toshiba

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/acwatch/internal/config"
	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/rate"
	"github.com/joshp123/acwatch/internal/units"
)

//go:embed dashboard.json
var dashboardJSON []byte

// Plugin implements the acwatch provider contract.
type Plugin struct {
	client        *Client
	collector     *MetricsCollector
	health        core.HealthStatus
	healthMessage string
}

var (
	_ core.Provider    = Plugin{}
	_ rate.RateLimited = Plugin{}
)

// NewPlugin constructs a Toshiba plugin from config. A nil section means the
// provider is disabled.
func NewPlugin(log *slog.Logger, cfg *config.ToshibaConfig, clock clockwork.Clock) (Plugin, bool) {
	if cfg == nil {
		return Plugin{}, false
	}

	runtimeCfg, err := ConfigFromConfig(cfg)
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error()}, true
	}

	client, err := NewClient(log, runtimeCfg, clock)
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error()}, true
	}

	return NewPluginWithClient(client), true
}

func NewPluginWithClient(client *Client) Plugin {
	return Plugin{
		client:    client,
		collector: NewMetricsCollector(client),
		health:    core.HealthHealthy,
	}
}

func (p Plugin) ID() string {
	return "toshiba"
}

func (p Plugin) Manifest() core.Manifest {
	return core.Manifest{
		ProviderID:  "toshiba",
		DisplayName: "Toshiba Home AC",
		Version:     "0.1.0",
	}
}

func (p Plugin) Units(ctx context.Context) ([]units.Snapshot, error) {
	if p.client == nil {
		return nil, errors.New(p.healthMessage)
	}
	return p.client.Snapshots(ctx)
}

func (p Plugin) RateLimits() rate.Declaration {
	if p.client == nil {
		return RateLimits(config.DefaultToshibaRequestsPerM)
	}
	return p.client.limits
}

func (p Plugin) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "toshiba-overview", JSON: dashboardJSON}}
}

func (p Plugin) Collectors() []prometheus.Collector {
	if p.client == nil {
		return nil
	}
	return []prometheus.Collector{p.collector, decodeFailures}
}

// Health is derived from the most recent upstream call: rejected credentials
// are an error, any other failure degrades.
func (p Plugin) Health() core.HealthStatus {
	if p.client == nil {
		return p.health
	}
	_, err := p.client.LastStates()
	switch {
	case err == nil:
		return core.HealthHealthy
	case errors.Is(err, ErrInvalidCredentials):
		return core.HealthError
	default:
		return core.HealthDegraded
	}
}

func (p Plugin) HealthMessage() string {
	if p.client == nil {
		return p.healthMessage
	}
	if _, err := p.client.LastStates(); err != nil {
		return err.Error()
	}
	return ""
}
