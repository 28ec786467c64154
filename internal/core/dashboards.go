package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// DashboardPath is the URL path a provider dashboard is served under.
func DashboardPath(providerID, name string) string {
	return "/dashboards/" + providerID + "/" + name + ".json"
}

// DashboardsMap materializes dashboard content to URL paths.
func DashboardsMap(providers []Provider) map[string][]byte {
	result := make(map[string][]byte)
	for _, provider := range providers {
		manifest := provider.Manifest()
		for _, dash := range provider.Dashboards() {
			result[DashboardPath(manifest.ProviderID, dash.Name)] = dash.JSON
		}
	}
	return result
}

// WriteDashboards writes dashboards to disk for Grafana provisioning.
func WriteDashboards(dir string, providers []Provider) error {
	if dir == "" {
		return nil
	}

	for _, provider := range providers {
		manifest := provider.Manifest()
		for _, dash := range provider.Dashboards() {
			providerDir := filepath.Join(dir, manifest.ProviderID)
			if err := os.MkdirAll(providerDir, 0o755); err != nil {
				return fmt.Errorf("create dashboard dir: %w", err)
			}
			path := filepath.Join(providerDir, dash.Name+".json")
			if err := os.WriteFile(path, dash.JSON, 0o644); err != nil {
				return fmt.Errorf("write dashboard %s: %w", path, err)
			}
		}
	}

	return nil
}
