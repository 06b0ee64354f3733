package config

import (
	"time"
)

// DefaultCampaiBaseURL is used when the config file omits campai.base_url.
const DefaultCampaiBaseURL = "https://api.campai.com"

// DefaultCallTimeout bounds each remote call when sync.timeout is unset.
const DefaultCallTimeout = 30 * time.Second

// Config is the full application configuration. It is constructed once at
// startup and passed by value; nothing reads configuration sources after
// ParseConfig returns.
type Config struct {
	Campai   CampaiConfig   `yaml:"campai" validate:"required"`
	Keycloak KeycloakConfig `yaml:"keycloak" validate:"required"`
	Sync     SyncConfig     `yaml:"sync" validate:"required"`
	Uptime   UptimeConfig   `yaml:"uptime,omitempty"`
}

// CampaiConfig selects the membership API endpoint and credentials.
type CampaiConfig struct {
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key" validate:"required"`
}

// KeycloakConfig selects the identity service admin API and client credentials.
type KeycloakConfig struct {
	URL          string `yaml:"url" validate:"required,url"`
	Realm        string `yaml:"realm" validate:"required,realm_name"`
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
}

// SyncConfig holds run behaviour: which organisation to reconcile, the
// group representing active membership, and whether to skip confirmation.
type SyncConfig struct {
	Organisation string `yaml:"organisation" validate:"required"`
	DefaultGroup string `yaml:"default_group" validate:"required"`
	AutoApply    bool   `yaml:"auto_apply,omitempty"`
	// Timeout is the per-remote-call timeout in seconds.
	Timeout int `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=3600"`
}

// CallTimeout returns the per-call timeout as a duration.
func (s SyncConfig) CallTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultCallTimeout
	}
	return time.Duration(s.Timeout) * time.Second
}

// UptimeConfig points at an optional push monitoring endpoint.
type UptimeConfig struct {
	PushURL string `yaml:"push_url,omitempty" validate:"omitempty,url"`
}

// Enabled reports whether health reporting is configured.
func (u UptimeConfig) Enabled() bool {
	return u.PushURL != ""
}
