package itunes

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"resultCount": 2,
	"results": [
		{
			"trackId": 123456789,
			"trackName": "Test Song",
			"artistName": "Test Artist",
			"collectionName": "Test Album",
			"artworkUrl100": "https://example.com/art.jpg",
			"previewUrl": "https://example.com/preview.m4a",
			"trackTimeMillis": 215000,
			"trackViewUrl": "https://music.apple.com/jp/album/123456789"
		},
		{
			"trackId": 987654321,
			"trackName": "No Preview Song",
			"artistName": "Other Artist",
			"trackTimeMillis": 180000
		}
	]
}`

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := New(Config{Country: "jp"})
	c.baseURL = server.URL
	return c, server
}

func TestSearchClips(t *testing.T) {
	var gotQuery string
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	clips, err := c.SearchClips(t.Context(), "test song", 10)
	require.NoError(t, err)
	require.Len(t, clips, 2)

	assert.Contains(t, gotQuery, "term=test+song")
	assert.Contains(t, gotQuery, "media=music")
	assert.Contains(t, gotQuery, "entity=song")
	assert.Contains(t, gotQuery, "country=jp")

	first := clips[0]
	assert.Equal(t, "123456789", first.ID)
	assert.Equal(t, "Test Song", first.Title)
	assert.Equal(t, "Test Artist", first.Artist)
	assert.Equal(t, "Test Album", first.Album)
	assert.Equal(t, "https://example.com/preview.m4a", first.PreviewURI)
	assert.Equal(t, 215*time.Second, first.Duration)
	assert.Equal(t, "itunes", first.SourceName)
	assert.True(t, first.Playable())

	assert.False(t, clips[1].Playable(), "result without preview URL is not playable")
}

func TestSearchClips_CachesResults(t *testing.T) {
	var calls atomic.Int32
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	_, err := c.SearchClips(t.Context(), "test", 10)
	require.NoError(t, err)
	_, err = c.SearchClips(t.Context(), "test", 10)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second identical search should hit the cache")

	// Different limit is a different cache key.
	_, err = c.SearchClips(t.Context(), "test", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchClips_EmptyTerm(t *testing.T) {
	c := New(Config{})
	_, err := c.SearchClips(t.Context(), "", 10)
	assert.Error(t, err)
}

func TestSearchClips_ServerError(t *testing.T) {
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := c.SearchClips(t.Context(), "test", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestNew_DefaultCountry(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, "jp", c.country)
}
