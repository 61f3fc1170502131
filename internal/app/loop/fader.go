package loop

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Direction is the ramp direction of a fade job.
type Direction int

const (
	FadeIn  Direction = iota // 0 -> 1
	FadeOut                  // current volume -> 0
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == FadeIn {
		return "in"
	}
	return "out"
}

// DefaultFadePollInterval is the volume update interval. Coarser than
// 100 ms produces audible stepping; finer than 20 ms buys nothing.
const DefaultFadePollInterval = 50 * time.Millisecond

// Fader drives linear volume ramps over a fixed duration. At most one job
// per direction is in flight at any instant; starting a new job of a given
// direction cancels any prior job of that same direction. The two
// directions are independent timelines with independent timer handles, so
// cancelling one never cancels the other.
type Fader struct {
	mu       sync.Mutex
	interval time.Duration
	cancels  [2]context.CancelFunc
}

// NewFader creates a fader polling at the given interval
// (DefaultFadePollInterval if non-positive).
func NewFader(interval time.Duration) *Fader {
	if interval <= 0 {
		interval = DefaultFadePollInterval
	}
	return &Fader{interval: interval}
}

// Start begins a fade on ch. For fade-in the start volume is forced to 0;
// for fade-out the ramp starts from whatever volume the channel currently
// has, which preserves continuity when a fade-out is retriggered mid-fade.
// On completion the volume snaps to the exact terminal value (1.0 in,
// 0.0 out) and onComplete is invoked exactly once. onComplete may be nil.
func (f *Fader) Start(ch Channel, dir Direction, duration time.Duration, onComplete func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelLocked(dir)

	startVolume := ch.Volume()
	if dir == FadeIn {
		startVolume = 0
		ch.SetVolume(0)
	}

	if duration <= 0 {
		ch.SetVolume(terminalVolume(dir))
		if onComplete != nil {
			onComplete()
		}
		return
	}

	// Captured for the stale-tick check: if the channel is rebound to a
	// different clip mid-fade, the job aborts without completing.
	startClip, startBound := ch.Bound()
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	f.cancels[dir] = cancel

	zlog.Debug().Msgf("fade: starting: direction=%s duration=%v start_volume=%.3f", dir, duration, startVolume)

	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cur, bound := ch.Bound()
				if bound != startBound || (bound && !cur.Same(startClip)) {
					// Stale tick: the clip was superseded.
					return
				}

				elapsed := time.Since(start)
				if elapsed >= duration {
					ch.SetVolume(terminalVolume(dir))
					if onComplete != nil {
						onComplete()
					}
					return
				}

				ch.SetVolume(rampVolume(dir, startVolume, elapsed, duration))
			}
		}
	}()
}

// Cancel stops the in-flight job of the given direction, if any.
// The channel keeps whatever volume the ramp had reached.
func (f *Fader) Cancel(dir Direction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked(dir)
}

// CancelAll stops both jobs.
func (f *Fader) CancelAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked(FadeIn)
	f.cancelLocked(FadeOut)
}

func (f *Fader) cancelLocked(dir Direction) {
	if f.cancels[dir] != nil {
		f.cancels[dir]()
		f.cancels[dir] = nil
	}
}

func terminalVolume(dir Direction) float64 {
	if dir == FadeIn {
		return 1.0
	}
	return 0.0
}

// rampVolume computes the linear ramp value, clamped to [0, 1].
func rampVolume(dir Direction, startVolume float64, elapsed, duration time.Duration) float64 {
	frac := float64(elapsed) / float64(duration)
	var v float64
	if dir == FadeIn {
		v = frac
	} else {
		v = startVolume * (1 - frac)
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
