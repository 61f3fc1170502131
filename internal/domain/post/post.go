// Package post provides the Post domain entity.
package post

import (
	"time"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// Post represents a published feed entry: a clip with presentation metadata.
// Scrolling a post into view is what drives clip selection.
type Post struct {
	ID        string    // UUID
	Caption   string    // Author caption shown with the clip
	Clip      clip.Clip // The clip this post plays
	CoverPath string    // Uploaded cover image path (overrides the clip's catalog art)
	CreatedAt time.Time // Creation time
	UpdatedAt time.Time // Last update time
}

// New creates a new post.
func New(id, caption string, cl clip.Clip) *Post {
	now := time.Now()
	return &Post{
		ID:        id,
		Caption:   caption,
		Clip:      cl,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCaption updates the caption and bumps the update time.
func (p *Post) SetCaption(caption string) {
	p.Caption = caption
	p.UpdatedAt = time.Now()
}

// SetCover sets the uploaded cover image path and bumps the update time.
func (p *Post) SetCover(path string) {
	p.CoverPath = path
	p.UpdatedAt = time.Now()
}

// CoverURL returns the effective cover art reference: the uploaded image
// when present, otherwise the clip's catalog artwork.
func (p *Post) CoverURL() string {
	if p.CoverPath != "" {
		return p.CoverPath
	}
	return p.Clip.CoverURL
}
