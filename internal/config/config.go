package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPath                = "./config.toml"
	DefaultHTTPAddr            = "127.0.0.1:8080"
	DefaultGRPCAddr            = "127.0.0.1:9000"
	DefaultPollInterval        = 10 * time.Second
	DefaultToshibaBaseURL      = "https://toshibamobileservice.azurewebsites.net"
	DefaultToshibaRequestsPerM = 30
	DefaultMQTTTopicPrefix     = "acwatch"
	DefaultMQTTClientID        = "acwatch"

	envPrefix = "ACWATCH"
)

type Config struct {
	Core    CoreConfig     `mapstructure:"core"`
	Toshiba *ToshibaConfig `mapstructure:"toshiba"`
	MQTT    *MQTTConfig    `mapstructure:"mqtt"`
}

type CoreConfig struct {
	HTTPAddr     string        `mapstructure:"http_addr"`
	GRPCAddr     string        `mapstructure:"grpc_addr"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type ToshibaConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	PasswordFile      string `mapstructure:"password_file"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type MQTTConfig struct {
	Broker       string `mapstructure:"broker"`
	TopicPrefix  string `mapstructure:"topic_prefix"`
	ClientID     string `mapstructure:"client_id"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password_file"`
}

// Load reads the TOML config file, overlays ACWATCH_* environment
// variables, applies defaults, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return decode(v)
}

// LoadFromEnv builds the config from ACWATCH_* environment variables only.
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v.IsSet("toshiba") || hasAnyEnv("TOSHIBA") {
		if cfg.Toshiba == nil {
			cfg.Toshiba = &ToshibaConfig{}
		}
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AutomaticEnv only applies to keys viper already knows about, so every
// key is registered up front.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"core.http_addr", "core.grpc_addr", "core.poll_interval",
		"toshiba.base_url", "toshiba.username", "toshiba.password", "toshiba.password_file", "toshiba.requests_per_minute",
		"mqtt.broker", "mqtt.topic_prefix", "mqtt.client_id", "mqtt.username", "mqtt.password_file",
	} {
		_ = v.BindEnv(key)
	}
}

func hasAnyEnv(section string) bool {
	prefix := envPrefix + "_" + section + "_"
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Core.HTTPAddr == "" {
		cfg.Core.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Core.GRPCAddr == "" {
		cfg.Core.GRPCAddr = DefaultGRPCAddr
	}
	if cfg.Core.PollInterval == 0 {
		cfg.Core.PollInterval = DefaultPollInterval
	}

	if cfg.Toshiba != nil {
		if cfg.Toshiba.BaseURL == "" {
			cfg.Toshiba.BaseURL = DefaultToshibaBaseURL
		}
		if cfg.Toshiba.RequestsPerMinute == 0 {
			cfg.Toshiba.RequestsPerMinute = DefaultToshibaRequestsPerM
		}
	}

	if cfg.MQTT != nil && cfg.MQTT.Broker == "" {
		cfg.MQTT = nil
	}
	if cfg.MQTT != nil {
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = DefaultMQTTTopicPrefix
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = DefaultMQTTClientID
		}
	}
}

// Validate enforces required invariants after defaults are applied.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.Core.HTTPAddr == "" {
		return fmt.Errorf("core.http_addr is required")
	}
	if cfg.Core.GRPCAddr == "" {
		return fmt.Errorf("core.grpc_addr is required")
	}
	if cfg.Core.PollInterval < 0 {
		return fmt.Errorf("core.poll_interval must not be negative")
	}

	if cfg.Toshiba != nil {
		if cfg.Toshiba.Username == "" {
			return fmt.Errorf("toshiba.username is required")
		}
		if cfg.Toshiba.Password == "" && cfg.Toshiba.PasswordFile == "" {
			return fmt.Errorf("toshiba.password or toshiba.password_file is required")
		}
		if cfg.Toshiba.Password != "" && cfg.Toshiba.PasswordFile != "" {
			return fmt.Errorf("toshiba.password and toshiba.password_file are mutually exclusive")
		}
		if cfg.Toshiba.RequestsPerMinute < 0 {
			return fmt.Errorf("toshiba.requests_per_minute must not be negative")
		}
	}

	if cfg.MQTT != nil && !strings.Contains(cfg.MQTT.Broker, "://") {
		return fmt.Errorf("mqtt.broker must be a URL such as tcp://host:1883")
	}

	return nil
}

// EnabledProviders maps enabled provider IDs based on config presence.
func EnabledProviders(cfg *Config) map[string]bool {
	enabled := make(map[string]bool)
	if cfg == nil {
		return enabled
	}
	if cfg.Toshiba != nil {
		enabled["toshiba"] = true
	}
	return enabled
}

// ReadSecret returns inline when set, otherwise the trimmed content of path.
func ReadSecret(inline, path string) (string, error) {
	if inline != "" || path == "" {
		return inline, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
