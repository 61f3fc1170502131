// Package source provides clip catalog search strategies.
package source

import (
	"context"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// Provider is the interface for clip catalog providers.
// Different implementations search different catalogs (Spotify, iTunes).
type Provider interface {
	// Search retrieves clips matching the query.
	// limit: the maximum number of clips to retrieve
	Search(ctx context.Context, query string, limit int) ([]clip.Clip, error)

	// Name returns the provider name (used in config).
	Name() string
}

// SpotifyClient defines the interface for Spotify operations needed by providers.
type SpotifyClient interface {
	SearchClips(ctx context.Context, query string, limit int) ([]clip.Clip, error)
	GetClip(ctx context.Context, trackID string) (*clip.Clip, error)
}

// ITunesClient defines the interface for iTunes operations needed by providers.
type ITunesClient interface {
	SearchClips(ctx context.Context, term string, limit int) ([]clip.Clip, error)
}
