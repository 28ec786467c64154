package core

import "sync"

// ProviderSummary is the registry view of one provider.
type ProviderSummary struct {
	ProviderID    string   `json:"provider_id"`
	DisplayName   string   `json:"display_name"`
	Version       string   `json:"version"`
	Status        string   `json:"status"`
	HealthMessage string   `json:"health_message,omitempty"`
	Dashboards    []string `json:"dashboards,omitempty"`
}

// Registry provides provider discovery to clients.
type Registry struct {
	providers []Provider
	mu        sync.RWMutex
}

func NewRegistry(providers []Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}

// List summarizes every provider with its current health.
func (r *Registry) List() []ProviderSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderSummary, 0, len(r.providers))
	for _, p := range r.providers {
		manifest := p.Manifest()
		summary := ProviderSummary{
			ProviderID:    manifest.ProviderID,
			DisplayName:   manifest.DisplayName,
			Version:       manifest.Version,
			Status:        string(p.Health()),
			HealthMessage: p.HealthMessage(),
		}
		for _, d := range p.Dashboards() {
			summary.Dashboards = append(summary.Dashboards, DashboardPath(manifest.ProviderID, d.Name))
		}
		out = append(out, summary)
	}
	return out
}

// Describe returns the summary for one provider.
func (r *Registry) Describe(id string) (ProviderSummary, bool) {
	for _, summary := range r.List() {
		if summary.ProviderID == id {
			return summary, true
		}
	}
	return ProviderSummary{}, false
}
