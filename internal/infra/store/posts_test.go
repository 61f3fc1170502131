package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmt/cliploop/internal/domain/clip"
)

func testClip(id string) clip.Clip {
	return clip.Clip{
		ID:         id,
		Title:      "Clip " + id,
		PreviewURI: "https://example.com/" + id + ".mp3",
		Duration:   30 * time.Second,
		SourceName: "itunes",
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewPostStore()

	p := s.Create("morning loop", testClip("a"))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, 1, s.Count())

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "morning loop", got.Caption)
	assert.Equal(t, "a", got.Clip.ID)
}

func TestGet_NotFound(t *testing.T) {
	s := NewPostStore()
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdateCaption(t *testing.T) {
	s := NewPostStore()
	p := s.Create("before", testClip("a"))

	require.NoError(t, s.UpdateCaption(p.ID, "after"))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Caption)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	assert.ErrorIs(t, s.UpdateCaption("missing", "x"), ErrPostNotFound)
}

func TestSetCover_OverridesCatalogArt(t *testing.T) {
	s := NewPostStore()
	cl := testClip("a")
	cl.CoverURL = "https://catalog.example.com/art.jpg"
	p := s.Create("cap", cl)

	assert.Equal(t, "https://catalog.example.com/art.jpg", p.CoverURL())

	require.NoError(t, s.SetCover(p.ID, "/uploads/custom.png"))
	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/custom.png", got.CoverURL())
}

func TestDelete(t *testing.T) {
	s := NewPostStore()
	p := s.Create("cap", testClip("a"))

	require.NoError(t, s.Delete(p.ID))
	assert.Equal(t, 0, s.Count())
	assert.ErrorIs(t, s.Delete(p.ID), ErrPostNotFound)
}

func TestAll_NewestFirst(t *testing.T) {
	s := NewPostStore()

	first := s.Create("first", testClip("a"))
	time.Sleep(2 * time.Millisecond)
	second := s.Create("second", testClip("b"))

	posts := s.All()
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}
