// Package itunes provides a client for the iTunes Search API.
//
// The API needs no credentials; every result carries a ~30 second preview
// URL, which makes it a reliable clip source.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// searchCacheEntry represents a cached search result.
type searchCacheEntry struct {
	clips []clip.Clip
}

// Client is an iTunes Search API client.
type Client struct {
	baseURL    string
	country    string
	httpClient *http.Client

	// Cache for search results
	searchCache map[string]*searchCacheEntry

	// Mutex for cache access
	cacheMu sync.RWMutex
}

// Config represents iTunes client configuration.
type Config struct {
	Country string // ISO 3166-1 alpha-2 store country, e.g. "jp"
}

// searchResponse represents the response from the search endpoint.
type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackID          int64  `json:"trackId"`
		TrackName        string `json:"trackName"`
		ArtistName       string `json:"artistName"`
		CollectionName   string `json:"collectionName"`
		ArtworkURL100    string `json:"artworkUrl100"`
		PreviewURL       string `json:"previewUrl"`
		TrackTimeMillis  int    `json:"trackTimeMillis"`
		TrackViewURL     string `json:"trackViewUrl"`
	} `json:"results"`
}

// New creates a new iTunes client.
func New(cfg Config) *Client {
	country := cfg.Country
	if country == "" {
		country = "jp"
	}

	return &Client{
		baseURL:     "https://itunes.apple.com/search",
		country:     country,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		searchCache: make(map[string]*searchCacheEntry),
	}
}

// SearchClips searches the iTunes catalog for songs matching the term.
// Reference: https://developer.apple.com/library/archive/documentation/AudioVideo/Conceptual/iTuneSearchAPI/
func (c *Client) SearchClips(ctx context.Context, term string, limit int) ([]clip.Clip, error) {
	if term == "" {
		return nil, errors.New("search term is required")
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	// Check cache first
	cacheKey := fmt.Sprintf("search:%s:%d", term, limit)
	c.cacheMu.RLock()
	if entry, ok := c.searchCache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("using cached search results for term: %s", term)
		return entry.clips, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("country", c.country)

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("itunes API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	clips := make([]clip.Clip, 0, len(response.Results))
	for _, r := range response.Results {
		clips = append(clips, clip.Clip{
			ID:         strconv.FormatInt(r.TrackID, 10),
			Title:      r.TrackName,
			Artist:     r.ArtistName,
			Album:      r.CollectionName,
			CoverURL:   r.ArtworkURL100,
			PreviewURI: r.PreviewURL,
			Duration:   time.Duration(r.TrackTimeMillis) * time.Millisecond,
			SourceName: "itunes",
			CatalogURL: r.TrackViewURL,
		})
	}

	// Cache the result
	c.cacheMu.Lock()
	c.searchCache[cacheKey] = &searchCacheEntry{
		clips: clips,
	}
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("cached search results for term: %s (count: %d)", term, len(clips))

	return clips, nil
}
