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

type ITunesProviderConfig struct {
	MaxResults int `yaml:"max_results" mapstructure:"max_results" default:"20" validate:"gte=1,lte=50"`
}

// ITunesProvider searches the iTunes catalog for clips.
type ITunesProvider struct {
	itunes ITunesClient
	config *ITunesProviderConfig
}

// NewITunesProvider creates a new ITunesProvider.
func NewITunesProvider(itunes ITunesClient, settings map[string]any) (*ITunesProvider, error) {
	var config ITunesProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("itunes provider config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return &ITunesProvider{
		itunes: itunes,
		config: &config,
	}, nil
}

// Search retrieves clips from the iTunes catalog.
func (p *ITunesProvider) Search(ctx context.Context, query string, limit int) ([]clip.Clip, error) {
	if limit <= 0 || limit > p.config.MaxResults {
		limit = p.config.MaxResults
	}

	clips, err := p.itunes.SearchClips(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "itunes search failed")
	}
	return clips, nil
}

// Name returns the provider name.
func (p *ITunesProvider) Name() string {
	return "itunes"
}
