// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Admin    AdminConfig             `yaml:"admin"`
	Playback PlaybackConfig          `yaml:"playback"`
	Uploads  UploadsConfig           `yaml:"uploads"`
	Source   SourceConfig            `yaml:"source"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
	ITunes   ITunesConfig            `yaml:"itunes"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// PlaybackConfig represents loop engine configuration.
//
// The fade poll interval is bounded because values coarser than 100 ms
// produce audible volume stepping and values finer than 20 ms waste cycles
// for no perceptual gain.
type PlaybackConfig struct {
	FadeMs              int     `yaml:"fade_ms" default:"1500" validate:"gte=100,lte=10000"`
	LeadMs              int     `yaml:"lead_ms" default:"2500" validate:"gte=100,lte=15000"`
	FadePollMs          int     `yaml:"fade_poll_ms" default:"50" validate:"gte=20,lte=100"`
	ProgressPollMs      int     `yaml:"progress_poll_ms" default:"100" validate:"gte=20,lte=1000"`
	VisibilityThreshold float64 `yaml:"visibility_threshold" default:"0.5" validate:"gt=0,lt=1"`
}

// FadeDuration returns the fade duration.
func (p PlaybackConfig) FadeDuration() time.Duration {
	return time.Duration(p.FadeMs) * time.Millisecond
}

// LeadTime returns the crossfade lead time.
func (p PlaybackConfig) LeadTime() time.Duration {
	return time.Duration(p.LeadMs) * time.Millisecond
}

// FadePollInterval returns the fader update interval.
func (p PlaybackConfig) FadePollInterval() time.Duration {
	return time.Duration(p.FadePollMs) * time.Millisecond
}

// ProgressPollInterval returns the progress polling interval.
func (p PlaybackConfig) ProgressPollInterval() time.Duration {
	return time.Duration(p.ProgressPollMs) * time.Millisecond
}

// UploadsConfig represents cover image upload configuration.
type UploadsConfig struct {
	Dir       string `yaml:"dir" default:"./uploads"`
	MaxSizeMB int    `yaml:"max_size_mb" default:"10" validate:"gte=1,lte=100"`
}

// SourceConfig represents clip catalog configuration.
type SourceConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1"`
}

// ProviderConfig represents a single catalog provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// SpotifyConfig represents Spotify API configuration. Credentials are only
// required when a spotify provider is configured.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"JP"`
}

// ITunesConfig represents iTunes Search API configuration.
type ITunesConfig struct {
	Country string `yaml:"country" validate:"omitempty,len=2" default:"jp"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateCrossfadeTiming(); err != nil {
		return err
	}

	return c.validateProviders()
}

// validateCrossfadeTiming enforces the crossfade timing invariant: the lead
// time must be at least the fade duration, otherwise the fade-out would be
// clipped by loop wraparound. This is a configuration error and fails fast;
// it is never checked at runtime.
func (c *Config) validateCrossfadeTiming() error {
	if c.Playback.LeadMs < c.Playback.FadeMs {
		return errors.Newf("playback.lead_ms (%d) must be >= playback.fade_ms (%d)",
			c.Playback.LeadMs, c.Playback.FadeMs)
	}
	return nil
}

// validateProviders checks that configured providers have what they need.
func (c *Config) validateProviders() error {
	for i, p := range c.Source.Providers {
		switch p.Type {
		case "spotify":
			if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" || c.Spotify.RefreshToken == "" {
				return errors.Newf("provider %d is spotify but spotify credentials are missing", i)
			}
		case "itunes":
			// No credentials required.
		default:
			return errors.Newf("unsupported provider type: %s (provider index %d)", p.Type, i)
		}
	}
	return nil
}

// HasProvider reports whether a provider of the given type is configured.
func (c *Config) HasProvider(providerType string) bool {
	for _, p := range c.Source.Providers {
		if p.Type == providerType {
			return true
		}
	}
	return false
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}
