package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// ClipWithSource represents a search result with its source provider info.
type ClipWithSource struct {
	Clip        clip.Clip
	DisplayName string
}

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain queries multiple providers and merges their results.
type ProviderChain struct {
	providers []ProviderWithMetadata
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers: providers,
	}
}

// Search queries all providers and merges their results. A failing provider
// is skipped with a warning; duplicates (same source and clip ID) and clips
// without a playable preview are dropped.
func (c *ProviderChain) Search(ctx context.Context, query string, limit int) ([]ClipWithSource, error) {
	var allResults []ClipWithSource
	seen := make(map[string]bool)

	for i, pm := range c.providers {
		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		clips, err := pm.Provider.Search(ctx, query, limit)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}

		if len(clips) == 0 {
			zlog.Debug().Msgf("provider returned no results: provider=%s", pm.DisplayName)
			continue
		}

		added := 0
		for _, cl := range clips {
			if !cl.Playable() {
				continue
			}
			key := cl.SourceName + ":" + cl.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			allResults = append(allResults, ClipWithSource{
				Clip:        cl,
				DisplayName: pm.DisplayName,
			})
			added++
		}

		zlog.Info().Msgf("provider returned results: provider=%s count=%d total_so_far=%d",
			pm.DisplayName, added, len(allResults))
	}

	if len(allResults) == 0 {
		return nil, errors.New("all providers failed to return results")
	}

	return allResults, nil
}

// Name returns the chain name.
func (c *ProviderChain) Name() string {
	return "provider_chain"
}
