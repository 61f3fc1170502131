package loop

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// fakeChannel is a scripted playback primitive for engine tests.
// Position does not advance on its own; tests move it explicitly.
type fakeChannel struct {
	mu sync.Mutex

	clip    *clip.Clip
	playing bool
	volume  float64
	pos     time.Duration
	dur     time.Duration

	bindErr error

	// volume values observed after the test armed recording
	recording  bool
	volumeTape []float64
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{}
}

func (f *fakeChannel) Bind(c clip.Clip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bindErr != nil {
		return f.bindErr
	}
	cc := c
	f.clip = &cc
	f.pos = 0
	f.playing = false
	f.dur = c.Duration
	return nil
}

func (f *fakeChannel) Unbind() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clip = nil
	f.dur = 0
}

func (f *fakeChannel) Bound() (clip.Clip, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clip == nil {
		return clip.Clip{}, false
	}
	return *f.clip, true
}

func (f *fakeChannel) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *fakeChannel) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakeChannel) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeChannel) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeChannel) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	if f.recording {
		f.volumeTape = append(f.volumeTape, v)
	}
}

func (f *fakeChannel) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeChannel) SetPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

func (f *fakeChannel) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

// test helpers

func (f *fakeChannel) seekTo(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

func (f *fakeChannel) setDuration(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dur = d
}

func (f *fakeChannel) failBinds() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindErr = errors.New("source unavailable")
}

func (f *fakeChannel) record() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = true
	f.volumeTape = nil
}

func (f *fakeChannel) tape() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float64, len(f.volumeTape))
	copy(out, f.volumeTape)
	return out
}

func (f *fakeChannel) snapshot() (volume float64, pos time.Duration, playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume, f.pos, f.playing
}

func testClip(id string, d time.Duration) clip.Clip {
	return clip.Clip{
		ID:         id,
		Title:      "clip " + id,
		Artist:     "artist",
		PreviewURI: "https://example.com/" + id + ".mp3",
		Duration:   d,
	}
}
