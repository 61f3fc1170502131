package source

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

type SpotifyProviderConfig struct {
	MaxResults int `yaml:"max_results" mapstructure:"max_results" default:"20" validate:"gte=1,lte=50"`
}

// SpotifyProvider searches the Spotify catalog for clips.
type SpotifyProvider struct {
	spotify SpotifyClient
	config  *SpotifyProviderConfig
}

// NewSpotifyProvider creates a new SpotifyProvider.
func NewSpotifyProvider(spotify SpotifyClient, settings map[string]any) (*SpotifyProvider, error) {
	var config SpotifyProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("spotify provider config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return &SpotifyProvider{
		spotify: spotify,
		config:  &config,
	}, nil
}

// Search retrieves clips from the Spotify catalog.
func (p *SpotifyProvider) Search(ctx context.Context, query string, limit int) ([]clip.Clip, error) {
	if limit <= 0 || limit > p.config.MaxResults {
		limit = p.config.MaxResults
	}

	clips, err := p.spotify.SearchClips(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "spotify search failed")
	}
	return clips, nil
}

// Name returns the provider name.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
