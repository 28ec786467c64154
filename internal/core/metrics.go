package core

import "github.com/prometheus/client_golang/prometheus"

// MetricsRegistry builds a registry from provider collectors plus any
// process-wide collectors (controller, session, rate guard).
func MetricsRegistry(providers []Provider, extra ...prometheus.Collector) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	for _, provider := range providers {
		for _, collector := range provider.Collectors() {
			registry.MustRegister(collector)
		}
	}
	for _, collector := range extra {
		registry.MustRegister(collector)
	}

	return registry
}
