// Package spotify provides a clip catalog client backed by the Spotify API.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// Client is a Spotify API client. Search results are converted to clips;
// the playable source is the track's 30 second preview URL, which Spotify
// omits for some tracks (those clips report Playable() == false).
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Market       string
}

// New creates a new Spotify client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
	)

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	// HTTP client with auto-refresh capability
	httpClient := auth.Client(ctx, token)

	market := cfg.Market
	if market == "" {
		market = "JP"
	}

	return &Client{
		client:     spotify.New(httpClient),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// SearchClips searches for tracks and returns them as clips.
func (c *Client) SearchClips(ctx context.Context, query string, limit int) ([]clip.Clip, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var result *spotify.SearchResult
	err := c.retry(func() error {
		r, err := c.client.Search(ctx, query, spotify.SearchTypeTrack,
			spotify.Limit(limit),
			spotify.Market(c.market),
		)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search")
	}

	clips := make([]clip.Clip, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		clips = append(clips, convertClip(&t))
	}

	return clips, nil
}

// GetClip retrieves a single track by ID, URL, or URI.
func (c *Client) GetClip(ctx context.Context, trackID string) (*clip.Clip, error) {
	id := extractTrackID(trackID)
	if id == "" {
		return nil, errors.Newf("invalid track reference: %s", trackID)
	}

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.client.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track")
	}

	converted := convertClip(result)
	return &converted, nil
}

// retry runs fn with simple fixed-delay retries.
func (c *Client) retry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			zlog.Debug().Msgf("spotify: retrying: attempt=%d error=%v", attempt, err)
			time.Sleep(c.retryDelay)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// convertClip converts a Spotify track to the domain clip.
func convertClip(t *spotify.FullTrack) clip.Clip {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}

	cover := ""
	if len(t.Album.Images) > 0 {
		cover = t.Album.Images[0].URL
	}

	return clip.Clip{
		ID:         string(t.ID),
		Title:      t.Name,
		Artist:     artist,
		Album:      t.Album.Name,
		CoverURL:   cover,
		PreviewURI: t.PreviewURL,
		Duration:   t.TimeDuration(),
		SourceName: "spotify",
		CatalogURL: t.ExternalURLs["spotify"],
	}
}

// extractTrackID extracts a track ID from a bare ID, an open.spotify.com
// URL, or a spotify: URI.
func extractTrackID(ref string) string {
	ref = strings.TrimSpace(ref)

	// spotify:track:<id>
	if strings.HasPrefix(ref, "spotify:track:") {
		return strings.TrimPrefix(ref, "spotify:track:")
	}

	// https://open.spotify.com/track/<id>?si=...
	if strings.Contains(ref, "open.spotify.com/track/") {
		parts := strings.Split(ref, "/track/")
		if len(parts) < 2 {
			return ""
		}
		id := parts[1]
		if i := strings.IndexAny(id, "?#"); i >= 0 {
			id = id[:i]
		}
		return id
	}

	if strings.ContainsAny(ref, "/:") {
		return ""
	}
	return ref
}
