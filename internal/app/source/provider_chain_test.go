package source

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmt/cliploop/internal/domain/clip"
)

type stubProvider struct {
	name  string
	clips []clip.Clip
	err   error
}

func (p *stubProvider) Search(_ context.Context, _ string, _ int) ([]clip.Clip, error) {
	return p.clips, p.err
}

func (p *stubProvider) Name() string {
	return p.name
}

func playableClip(source, id string) clip.Clip {
	return clip.Clip{
		ID:         id,
		Title:      "Clip " + id,
		PreviewURI: "https://example.com/" + id + ".mp3",
		Duration:   30 * time.Second,
		SourceName: source,
	}
}

func TestProviderChain_MergesResults(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "spotify", clips: []clip.Clip{playableClip("spotify", "a")}}, DisplayName: "Spotify"},
		{Provider: &stubProvider{name: "itunes", clips: []clip.Clip{playableClip("itunes", "b")}}, DisplayName: "iTunes"},
	})

	results, err := chain.Search(t.Context(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Spotify", results[0].DisplayName)
	assert.Equal(t, "iTunes", results[1].DisplayName)
}

func TestProviderChain_SkipsFailingProvider(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "spotify", err: errors.New("rate limited")}, DisplayName: "Spotify"},
		{Provider: &stubProvider{name: "itunes", clips: []clip.Clip{playableClip("itunes", "b")}}, DisplayName: "iTunes"},
	})

	results, err := chain.Search(t.Context(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Clip.ID)
}

func TestProviderChain_AllProvidersFail(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "spotify", err: errors.New("down")}, DisplayName: "Spotify"},
	})

	_, err := chain.Search(t.Context(), "query", 10)
	assert.Error(t, err)
}

func TestProviderChain_DropsUnplayableAndDuplicates(t *testing.T) {
	noPreview := clip.Clip{ID: "c", Title: "No Preview", Duration: 30 * time.Second, SourceName: "spotify"}
	dup := playableClip("spotify", "a")

	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "spotify", clips: []clip.Clip{playableClip("spotify", "a"), noPreview, dup}}, DisplayName: "Spotify"},
	})

	results, err := chain.Search(t.Context(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Clip.ID)
}

func TestProviderChain_SameIDDifferentSourceKept(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "spotify", clips: []clip.Clip{playableClip("spotify", "a")}}, DisplayName: "Spotify"},
		{Provider: &stubProvider{name: "itunes", clips: []clip.Clip{playableClip("itunes", "a")}}, DisplayName: "iTunes"},
	})

	results, err := chain.Search(t.Context(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2, "identity is source-scoped")
}

func TestNewSpotifyProvider_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
		wantMax  int
	}{
		{name: "defaults", settings: nil, wantMax: 20},
		{name: "custom max_results", settings: map[string]any{"max_results": 5}, wantMax: 5},
		{name: "out of range", settings: map[string]any{"max_results": 500}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewSpotifyProvider(&stubSpotifyClient{}, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, p.config.MaxResults)
		})
	}
}

type stubSpotifyClient struct{}

func (s *stubSpotifyClient) SearchClips(_ context.Context, _ string, limit int) ([]clip.Clip, error) {
	clips := make([]clip.Clip, 0, limit)
	for i := 0; i < limit; i++ {
		clips = append(clips, playableClip("spotify", string(rune('a'+i))))
	}
	return clips, nil
}

func (s *stubSpotifyClient) GetClip(_ context.Context, id string) (*clip.Clip, error) {
	c := playableClip("spotify", id)
	return &c, nil
}

func TestSpotifyProvider_CapsLimit(t *testing.T) {
	p, err := NewSpotifyProvider(&stubSpotifyClient{}, map[string]any{"max_results": 3})
	require.NoError(t, err)

	clips, err := p.Search(t.Context(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, clips, 3)
}
