// Package httpapi provides the JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/okmt/cliploop/internal/app/filter"
	"github.com/okmt/cliploop/internal/app/loop"
	"github.com/okmt/cliploop/internal/app/notification"
	"github.com/okmt/cliploop/internal/app/source"
	"github.com/okmt/cliploop/internal/domain/clip"
	"github.com/okmt/cliploop/internal/infra/store"
)

// Player is the slice of the playback session the API drives.
type Player interface {
	Select(c clip.Clip) error
	Toggle(c clip.Clip) error
	Pause()
	Stop()
	Seek(pos time.Duration)
	Paused() bool
	Current() (clip.Clip, bool)
	State() loop.State
	Elapsed() time.Duration
	Duration() time.Duration
	Progress() float64
}

// Searcher is the slice of the source provider chain the API queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]source.ClipWithSource, error)
}

// Visibility is the slice of the visibility controller the API feeds.
type Visibility interface {
	Observe(itemID string, cl clip.Clip, ratio float64) error
	Forget(itemID string)
	CurrentItem() (string, bool)
}

// Handler bundles the API dependencies.
type Handler struct {
	player     Player
	searcher   Searcher
	visibility Visibility
	posts      *store.PostStore
	filters    *filter.Chain
	notifier   *notification.Manager

	adminToken    string
	uploadsDir    string
	maxUploadSize int64
}

// Config represents handler configuration.
type Config struct {
	AdminToken    string
	UploadsDir    string
	MaxUploadSize int64 // bytes
}

// NewHandler creates a new API handler.
func NewHandler(player Player, searcher Searcher, visibility Visibility, posts *store.PostStore, filters *filter.Chain, notifier *notification.Manager, cfg Config) *Handler {
	return &Handler{
		player:        player,
		searcher:      searcher,
		visibility:    visibility,
		posts:         posts,
		filters:       filters,
		notifier:      notifier,
		adminToken:    cfg.AdminToken,
		uploadsDir:    cfg.UploadsDir,
		maxUploadSize: cfg.MaxUploadSize,
	}
}

// Routes builds the API mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Catalog search
	mux.HandleFunc("GET /api/search", h.handleSearch)

	// Posts
	mux.HandleFunc("GET /api/posts", h.handleListPosts)
	mux.HandleFunc("GET /api/posts/{id}", h.handleGetPost)
	mux.HandleFunc("POST /api/posts", h.requireAdmin(h.handleCreatePost))
	mux.HandleFunc("PATCH /api/posts/{id}", h.requireAdmin(h.handleUpdatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", h.requireAdmin(h.handleDeletePost))
	mux.HandleFunc("POST /api/posts/{id}/cover", h.requireAdmin(h.handleUploadCover))

	// Player
	mux.HandleFunc("GET /api/player/status", h.handleStatus)
	mux.HandleFunc("POST /api/player/select", h.handleSelect)
	mux.HandleFunc("POST /api/player/toggle", h.handleToggle)
	mux.HandleFunc("POST /api/player/pause", h.handlePause)
	mux.HandleFunc("POST /api/player/stop", h.handleStop)
	mux.HandleFunc("POST /api/player/seek", h.handleSeek)
	mux.HandleFunc("POST /api/player/visibility", h.handleVisibility)
	mux.HandleFunc("GET /api/player/events", h.handleEvents)

	// Uploaded covers
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadsDir))))

	return mux
}
