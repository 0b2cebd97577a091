// Package config loads runtime configuration for the dashboard client.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix          = "BOUNTEER"
	defaultBaseURL     = "https://directus.bounteer.com"
	defaultLogLevel    = "info"
	defaultPageSize    = 20
	defaultActionQuota = 10
	defaultSyncSeconds = 30
)

// AppConfig captures runtime configuration for the dashboard.
type AppConfig struct {
	DirectusBaseURL  string
	StaticToken      string
	LogLevel         string
	PageSize         int
	ActionQuota      int
	SyncIntervalSecs int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("directus.base_url", defaultBaseURL)
	configViper.SetDefault("directus.static_token", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("dashboard.page_size", defaultPageSize)
	configViper.SetDefault("dashboard.action_quota", defaultActionQuota)
	configViper.SetDefault("sync.interval_seconds", defaultSyncSeconds)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		DirectusBaseURL:  configViper.GetString("directus.base_url"),
		StaticToken:      configViper.GetString("directus.static_token"),
		LogLevel:         configViper.GetString("log.level"),
		PageSize:         configViper.GetInt("dashboard.page_size"),
		ActionQuota:      configViper.GetInt("dashboard.action_quota"),
		SyncIntervalSecs: configViper.GetInt("sync.interval_seconds"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DirectusBaseURL) == "" {
		return fmt.Errorf("directus.base_url is required")
	}
	if !strings.HasPrefix(c.DirectusBaseURL, "http://") && !strings.HasPrefix(c.DirectusBaseURL, "https://") {
		return fmt.Errorf("directus.base_url must be an http(s) URL")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("dashboard.page_size must be positive")
	}
	if c.ActionQuota <= 0 {
		return fmt.Errorf("dashboard.action_quota must be positive")
	}
	if c.SyncIntervalSecs <= 0 {
		return fmt.Errorf("sync.interval_seconds must be positive")
	}
	return nil
}
