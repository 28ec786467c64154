package plugins

import (
	"log/slog"

	"github.com/joshp123/acwatch/internal/config"
	"github.com/joshp123/acwatch/internal/core"
)

// Factory builds a provider instance from the loaded config.
type Factory func(*config.Config, *slog.Logger) (core.Provider, bool)

var compiled []Factory

// Register adds a compiled-in provider factory to the registry.
func Register(factory Factory) {
	compiled = append(compiled, factory)
}

// Compiled returns the configured provider instances for this build.
func Compiled(cfg *config.Config, log *slog.Logger) []core.Provider {
	if cfg == nil {
		return nil
	}
	out := make([]core.Provider, 0, len(compiled))
	for _, factory := range compiled {
		provider, ok := factory(cfg, log)
		if !ok {
			continue
		}
		out = append(out, provider)
	}
	return out
}
