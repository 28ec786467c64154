//go:build !acwatch_no_toshiba

package plugins

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/joshp123/acwatch/internal/config"
	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/plugins/toshiba"
)

func init() {
	Register(func(cfg *config.Config, log *slog.Logger) (core.Provider, bool) {
		return toshiba.NewPlugin(log, cfg.Toshiba, clockwork.NewRealClock())
	})
}
