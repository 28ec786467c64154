package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var providerIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)

// ValidateProviders enforces basic provider contract invariants at startup.
func ValidateProviders(providers []Provider) error {
	seen := make(map[string]bool)
	for _, provider := range providers {
		id := provider.ID()
		manifest := provider.Manifest()
		if id == "" {
			return fmt.Errorf("provider id is empty")
		}
		if !providerIDPattern.MatchString(id) {
			return fmt.Errorf("provider id %q does not match %s", id, providerIDPattern.String())
		}
		if manifest.ProviderID != id {
			return fmt.Errorf("provider id mismatch: id=%q manifest=%q", id, manifest.ProviderID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate provider id: %s", id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateEnabledProviders fails when config enables a provider that is not compiled in.
func ValidateEnabledProviders(compiled []Provider, enabled map[string]bool) error {
	known := make(map[string]bool, len(compiled))
	for _, p := range compiled {
		known[p.ID()] = true
	}
	var missing []string
	for id, on := range enabled {
		if on && !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("enabled providers not compiled in: %s", strings.Join(missing, ", "))
	}
	return nil
}
