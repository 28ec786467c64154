package toshiba

import (
	"fmt"
	"strings"

	"github.com/joshp123/acwatch/internal/config"
)

// Config defines runtime configuration for the Toshiba client.
type Config struct {
	BaseURL           string
	Username          string
	Password          string
	RequestsPerMinute int
}

// ConfigFromConfig resolves secrets and defaults from the bridge config section.
func ConfigFromConfig(cfg *config.ToshibaConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("toshiba config is required")
	}
	password, err := config.ReadSecret(cfg.Password, cfg.PasswordFile)
	if err != nil {
		return Config{}, err
	}

	out := Config{
		BaseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		Username:          strings.TrimSpace(cfg.Username),
		Password:          password,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}
	if out.BaseURL == "" {
		out.BaseURL = config.DefaultToshibaBaseURL
	}
	if out.RequestsPerMinute == 0 {
		out.RequestsPerMinute = config.DefaultToshibaRequestsPerM
	}
	if out.Username == "" || out.Password == "" {
		return Config{}, fmt.Errorf("toshiba username and password are required")
	}
	return out, nil
}
