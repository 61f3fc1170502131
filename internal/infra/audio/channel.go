package audio

import (
	"bytes"
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// silenceFloor is the linear volume below which the channel is muted
// outright instead of attenuated.
const silenceFloor = 0.001

// switchable is a streamer whose source can be swapped while it stays in
// the speaker mixer. It never drains: missing or exhausted sources are
// filled with silence, so the mixer keeps pulling from it forever.
type switchable struct {
	src beep.Streamer
}

func (s *switchable) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	if s.src != nil {
		filled, _ = s.src.Stream(samples)
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (s *switchable) Err() error { return nil }

// Channel is a playback slot backed by the beep speaker. It decodes the
// bound clip's MP3 preview, resamples it to the mixer rate, and exposes
// pause, volume and seek controls.
type Channel struct {
	fetcher *Fetcher

	// Playback graph, mixer side. Mutated only under speaker.Lock.
	sw   *switchable
	ctrl *beep.Ctrl
	vol  *effects.Volume

	streamer beep.StreamSeekCloser
	format   beep.Format

	bound    clip.Clip
	hasBound bool
	level    float64
}

// NewChannel creates a channel and installs it in the speaker mixer.
// The speaker must be initialized first.
func NewChannel(fetcher *Fetcher) *Channel {
	c := &Channel{
		fetcher: fetcher,
		sw:      &switchable{},
	}
	c.ctrl = &beep.Ctrl{Streamer: c.sw, Paused: true}
	c.vol = &effects.Volume{
		Streamer: c.ctrl,
		Base:     2,
		Volume:   0,
		Silent:   true,
	}
	c.level = 0

	speaker.Play(c.vol)
	return c
}

// Bind loads the clip's preview into the channel, paused at position 0.
func (c *Channel) Bind(cl clip.Clip) error {
	if !cl.Playable() {
		return errors.Newf("clip is not playable: %s", cl.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := c.fetcher.Fetch(ctx, cl.PreviewURI)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch preview for clip %s", cl.ID)
	}

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return errors.Wrapf(err, "failed to decode preview for clip %s", cl.ID)
	}

	resampled := beep.Streamer(streamer)
	if format.SampleRate != MixerSampleRate {
		resampled = beep.Resample(4, format.SampleRate, MixerSampleRate, streamer)
	}

	speaker.Lock()
	if c.streamer != nil {
		c.streamer.Close()
	}
	c.streamer = streamer
	c.format = format
	c.sw.src = resampled
	c.ctrl.Paused = true
	c.bound = cl
	c.hasBound = true
	speaker.Unlock()

	zlog.Debug().Msgf("channel bound: clip=%s duration=%s", cl.ID, format.SampleRate.D(streamer.Len()))
	return nil
}

// Unbind releases the bound source. The channel stays in the mixer,
// streaming silence.
func (c *Channel) Unbind() {
	speaker.Lock()
	if c.streamer != nil {
		c.streamer.Close()
		c.streamer = nil
	}
	c.sw.src = nil
	c.ctrl.Paused = true
	c.bound = clip.Clip{}
	c.hasBound = false
	speaker.Unlock()
}

// Bound returns the currently bound clip, if any.
func (c *Channel) Bound() (clip.Clip, bool) {
	speaker.Lock()
	defer speaker.Unlock()
	return c.bound, c.hasBound
}

// Play starts or resumes playback.
func (c *Channel) Play() {
	speaker.Lock()
	c.ctrl.Paused = false
	speaker.Unlock()
}

// Pause pauses playback in place.
func (c *Channel) Pause() {
	speaker.Lock()
	c.ctrl.Paused = true
	speaker.Unlock()
}

// Playing reports whether the channel is actively producing its source.
func (c *Channel) Playing() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return c.hasBound && !c.ctrl.Paused
}

// Volume returns the linear volume in [0.0, 1.0].
func (c *Channel) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return c.level
}

// SetVolume sets the linear volume. The linear value is mapped onto beep's
// exponential volume scale (base 2); values at or below the silence floor
// mute the channel.
func (c *Channel) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	speaker.Lock()
	c.level = v
	if v <= silenceFloor {
		c.vol.Silent = true
	} else {
		c.vol.Silent = false
		c.vol.Volume = math.Log2(v)
	}
	speaker.Unlock()
}

// Position returns the playback position within the bound source.
func (c *Channel) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()

	if c.streamer == nil {
		return 0
	}
	return c.format.SampleRate.D(c.streamer.Position())
}

// SetPosition seeks the bound source. Out-of-range positions are clamped.
func (c *Channel) SetPosition(pos time.Duration) {
	speaker.Lock()
	defer speaker.Unlock()

	if c.streamer == nil {
		return
	}

	samples := c.format.SampleRate.N(pos)
	if samples < 0 {
		samples = 0
	}
	if max := c.streamer.Len(); samples > max {
		samples = max
	}
	if err := c.streamer.Seek(samples); err != nil {
		zlog.Warn().Msgf("seek failed: clip=%s pos=%s error=%v", c.bound.ID, pos, err)
	}
}

// Duration returns the decoded length of the bound source, or 0 when
// nothing is bound.
func (c *Channel) Duration() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()

	if c.streamer == nil {
		return 0
	}
	return c.format.SampleRate.D(c.streamer.Len())
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
