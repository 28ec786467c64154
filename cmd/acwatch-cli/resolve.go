package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joshp123/acwatch/internal/core"
)

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer(" ", "_", "-", "_")
	name = replacer.Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// resolveProvider matches input against provider ids and display names.
func resolveProvider(input string, providers []core.ProviderSummary) (core.ProviderSummary, error) {
	needle := normalizeName(input)
	available := make([]string, 0, len(providers))
	for _, p := range providers {
		if normalizeName(p.ProviderID) == needle || normalizeName(p.DisplayName) == needle {
			return p, nil
		}
		available = append(available, p.ProviderID)
	}
	sort.Strings(available)
	return core.ProviderSummary{}, fmt.Errorf("provider %q not found. Available: %s", input, strings.Join(available, ", "))
}
