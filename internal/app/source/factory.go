package source

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/infra/config"
)

// NewProviderChainFromConfig creates a provider chain from configuration.
// Clients may be nil when the corresponding provider type is not configured.
func NewProviderChainFromConfig(cfg *config.Config, spotify SpotifyClient, itunes ITunesClient) (*ProviderChain, error) {
	if len(cfg.Source.Providers) == 0 {
		return nil, errors.New("no source providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Source.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating source provider: index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case "spotify":
			if spotify == nil {
				return nil, errors.Newf("spotify provider configured but no spotify client available (provider index %d)", i)
			}
			provider, err = NewSpotifyProvider(spotify, pcfg.Settings)

		case "itunes":
			if itunes == nil {
				return nil, errors.Newf("itunes provider configured but no itunes client available (provider index %d)", i)
			}
			provider, err = NewITunesProvider(itunes, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: pcfg.DisplayName,
		})

		zlog.Info().Msgf("registered source provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, pcfg.DisplayName)
	}

	return NewProviderChain(providers), nil
}
