package loop

import (
	"time"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// Channel is the playback primitive behind one of the engine's two playback
// slots. Implementations wrap an audio output; tests use a scripted fake.
//
// A channel is bound to at most one clip at a time. Duration may report 0
// until the bound source has finished loading; the engine treats an unknown
// duration as "crossfade trigger unreachable".
type Channel interface {
	// Bind loads the clip source into the channel, leaving it paused at
	// position 0 with its previous volume untouched.
	Bind(c clip.Clip) error
	// Unbind releases the bound source.
	Unbind()
	// Bound returns the currently bound clip, if any. Timer callbacks use
	// this as the identity check that discards stale ticks.
	Bound() (clip.Clip, bool)

	Play()
	Pause()
	Playing() bool

	// Volume is in [0.0, 1.0]. Implementations clamp.
	Volume() float64
	SetVolume(v float64)

	Position() time.Duration
	SetPosition(pos time.Duration)
	// Duration of the loaded source, or 0 while still unknown.
	Duration() time.Duration
}

// Pair holds the engine's two fixed channels and the active-role flag.
// Channels are never created or destroyed, only rebound; the "active" role
// moves between them by flipping the flag, never by moving objects.
type Pair struct {
	channels [2]Channel
	active   int
}

// NewPair creates a pair with the first channel active.
func NewPair(a, b Channel) *Pair {
	return &Pair{channels: [2]Channel{a, b}}
}

// Active returns the channel the listener currently hears
// (or is transitioning into hearing).
func (p *Pair) Active() Channel {
	return p.channels[p.active]
}

// Inactive returns the standby channel.
func (p *Pair) Inactive() Channel {
	return p.channels[1-p.active]
}

// Swap flips the active role. Exactly one channel is active at any instant;
// the flip is the swap, there is no intermediate state.
func (p *Pair) Swap() {
	p.active = 1 - p.active
}

// Each calls fn for both channels, active first.
func (p *Pair) Each(fn func(Channel)) {
	fn(p.Active())
	fn(p.Inactive())
}
