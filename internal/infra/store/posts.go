// Package store provides in-memory storage for posts.
package store

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okmt/cliploop/internal/domain/clip"
	"github.com/okmt/cliploop/internal/domain/post"
)

var ErrPostNotFound = errors.New("post not found")

// PostStore manages posts with thread-safe access.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*post.Post
}

// NewPostStore creates a new post store.
func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[string]*post.Post),
	}
}

// Create adds a new post for the clip and returns it.
func (s *PostStore) Create(caption string, cl clip.Clip) *post.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	p := post.New(id, caption, cl)
	s.posts[id] = p
	return p
}

// Get retrieves a post by ID.
func (s *PostStore) Get(postID string) (*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	return p, nil
}

// UpdateCaption updates a post's caption.
func (s *PostStore) UpdateCaption(postID, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	p.SetCaption(caption)
	return nil
}

// SetCover attaches an uploaded cover image to a post.
func (s *PostStore) SetCover(postID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	p.SetCover(path)
	return nil
}

// Delete removes a post.
func (s *PostStore) Delete(postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

// All returns all posts, newest first.
func (s *PostStore) All() []*post.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := lo.Values(s.posts)
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

// Count returns the number of posts.
func (s *PostStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
