package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// fakePlayer records Select calls.
type fakePlayer struct {
	selects []clip.Clip
	current *clip.Clip
}

func (f *fakePlayer) Select(c clip.Clip) error {
	cc := c
	f.selects = append(f.selects, c)
	f.current = &cc
	return nil
}

func (f *fakePlayer) Current() (clip.Clip, bool) {
	if f.current == nil {
		return clip.Clip{}, false
	}
	return *f.current, true
}

func vClip(id string) clip.Clip {
	return clip.Clip{ID: id, PreviewURI: "https://example.com/" + id + ".mp3"}
}

func TestController_RisingCrossTakesOver(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	// Item B is playing; item A's ratio rises 0.3 -> 0.6, crossing 0.5.
	require.NoError(t, c.Observe("b", vClip("clip-b"), 0.8))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.3))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.6))

	require.Len(t, p.selects, 2)
	assert.Equal(t, "clip-b", p.selects[0].ID)
	assert.Equal(t, "clip-a", p.selects[1].ID)

	item, ok := c.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, "a", item)
}

func TestController_FallingBelowThresholdDoesNotStop(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.7))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.2))

	// Only a new sufficiently-visible item triggers a switch; nothing
	// visible leaves playback as-is.
	assert.Len(t, p.selects, 1)
	item, ok := c.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, "a", item)
}

func TestController_IdempotentAboveThreshold(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.6))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.9))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.95))

	assert.Len(t, p.selects, 1, "repeated visibility events must not restart the item")
}

func TestController_ReCrossAfterLeavingViewDoesNotRestartCurrent(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.7))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.2))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.8))

	// Still the current item and still holding the session: no redundant start.
	assert.Len(t, p.selects, 1)
}

func TestController_SwitchBetweenItems(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.6))
	require.NoError(t, c.Observe("b", vClip("clip-b"), 0.1))
	require.NoError(t, c.Observe("b", vClip("clip-b"), 0.55))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.4))
	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.6))

	require.Len(t, p.selects, 3)
	assert.Equal(t, []string{"clip-a", "clip-b", "clip-a"},
		[]string{p.selects[0].ID, p.selects[1].ID, p.selects[2].ID})
}

func TestController_DefaultThreshold(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.49))
	assert.Empty(t, p.selects)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.51))
	assert.Len(t, p.selects, 1)
}

func TestController_ForgetDropsItemState(t *testing.T) {
	p := &fakePlayer{}
	c := NewController(p, 0.5)

	require.NoError(t, c.Observe("a", vClip("clip-a"), 0.7))
	c.Forget("a")

	_, ok := c.CurrentItem()
	assert.False(t, ok)
}
