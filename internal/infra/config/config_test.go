package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
admin:
  token: "test-token"
source:
  providers:
    - type: itunes
      display_name: "iTunes"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1500, cfg.Playback.FadeMs)
	assert.Equal(t, 2500, cfg.Playback.LeadMs)
	assert.Equal(t, 50, cfg.Playback.FadePollMs)
	assert.Equal(t, 0.5, cfg.Playback.VisibilityThreshold)
	assert.Equal(t, "./uploads", cfg.Uploads.Dir)
	assert.Equal(t, "jp", cfg.ITunes.Country)

	assert.Equal(t, 1500*time.Millisecond, cfg.Playback.FadeDuration())
	assert.Equal(t, 2500*time.Millisecond, cfg.Playback.LeadTime())
}

func TestLoad_RejectsLeadShorterThanFade(t *testing.T) {
	_, err := Load(writeConfig(t, `
admin:
  token: "test-token"
playback:
  fade_ms: 3000
  lead_ms: 2000
source:
  providers:
    - type: itunes
      display_name: "iTunes"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead_ms")
}

func TestLoad_RequiresAdminToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	_, err := Load(writeConfig(t, `
source:
  providers:
    - type: itunes
      display_name: "iTunes"
`))
	assert.Error(t, err)
}

func TestLoad_RequiresProviders(t *testing.T) {
	_, err := Load(writeConfig(t, `
admin:
  token: "test-token"
`))
	assert.Error(t, err)
}

func TestLoad_SpotifyProviderNeedsCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "")

	_, err := Load(writeConfig(t, `
admin:
  token: "test-token"
source:
  providers:
    - type: spotify
      display_name: "Spotify"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spotify credentials")
}

func TestLoad_UnknownProviderRejected(t *testing.T) {
	_, err := Load(writeConfig(t, `
admin:
  token: "test-token"
source:
  providers:
    - type: soundcloud
      display_name: "SoundCloud"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "env-refresh")

	cfg, err := Load(writeConfig(t, `
admin:
  token: "from-file"
source:
  providers:
    - type: spotify
      display_name: "Spotify"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.Token)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
}

func TestLoad_FadePollBounds(t *testing.T) {
	tests := []struct {
		name    string
		poll    string
		wantErr bool
	}{
		{name: "too coarse steps audibly", poll: "200", wantErr: true},
		{name: "too fine wastes cycles", poll: "5", wantErr: true},
		{name: "recommended", poll: "50", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, `
admin:
  token: "test-token"
playback:
  fade_poll_ms: `+tt.poll+`
source:
  providers:
    - type: itunes
      display_name: "iTunes"
`))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsFilterEnabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_seconds: 120
`))
	require.NoError(t, err)

	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("preview_available_filter"))
}

func TestHasProvider(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.True(t, cfg.HasProvider("itunes"))
	assert.False(t, cfg.HasProvider("spotify"))
}
