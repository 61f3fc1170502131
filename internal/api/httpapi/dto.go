package httpapi

import (
	"time"

	"github.com/samber/lo"

	"github.com/okmt/cliploop/internal/app/source"
	"github.com/okmt/cliploop/internal/domain/clip"
	"github.com/okmt/cliploop/internal/domain/post"
)

// clipDTO is the wire form of a clip.
type clipDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	CoverURL   string `json:"cover_url,omitempty"`
	PreviewURI string `json:"preview_uri"`
	DurationMs int64  `json:"duration_ms"`
	Source     string `json:"source"`
	CatalogURL string `json:"catalog_url,omitempty"`
}

func toClipDTO(c clip.Clip) clipDTO {
	return clipDTO{
		ID:         c.ID,
		Title:      c.Title,
		Artist:     c.Artist,
		Album:      c.Album,
		CoverURL:   c.CoverURL,
		PreviewURI: c.PreviewURI,
		DurationMs: c.Duration.Milliseconds(),
		Source:     c.SourceName,
		CatalogURL: c.CatalogURL,
	}
}

func fromClipDTO(d clipDTO) clip.Clip {
	return clip.Clip{
		ID:         d.ID,
		Title:      d.Title,
		Artist:     d.Artist,
		Album:      d.Album,
		CoverURL:   d.CoverURL,
		PreviewURI: d.PreviewURI,
		Duration:   millis(d.DurationMs),
		SourceName: d.Source,
		CatalogURL: d.CatalogURL,
	}
}

// searchResultDTO is one search hit with its provider display name.
type searchResultDTO struct {
	Clip     clipDTO `json:"clip"`
	Provider string  `json:"provider"`
}

func toSearchResultDTOs(results []source.ClipWithSource) []searchResultDTO {
	return lo.Map(results, func(r source.ClipWithSource, _ int) searchResultDTO {
		return searchResultDTO{
			Clip:     toClipDTO(r.Clip),
			Provider: r.DisplayName,
		}
	})
}

// postDTO is the wire form of a post.
type postDTO struct {
	ID        string  `json:"id"`
	Caption   string  `json:"caption"`
	Clip      clipDTO `json:"clip"`
	CoverURL  string  `json:"cover_url,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toPostDTO(p *post.Post) postDTO {
	return postDTO{
		ID:        p.ID,
		Caption:   p.Caption,
		Clip:      toClipDTO(p.Clip),
		CoverURL:  p.CoverURL(),
		CreatedAt: p.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: p.UpdatedAt.UTC().Format(timeFormat),
	}
}

func toPostDTOs(posts []*post.Post) []postDTO {
	return lo.Map(posts, func(p *post.Post, _ int) postDTO {
		return toPostDTO(p)
	})
}

// statusDTO is the player status readout.
type statusDTO struct {
	State      string   `json:"state"`
	Paused     bool     `json:"paused"`
	Clip       *clipDTO `json:"clip,omitempty"`
	ElapsedMs  int64    `json:"elapsed_ms"`
	DurationMs int64    `json:"duration_ms"`
	Progress   float64  `json:"progress"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
