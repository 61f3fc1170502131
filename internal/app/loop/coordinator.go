package loop

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// Errors
var (
	ErrClipNotPlayable = errors.New("clip has no playable source")
	ErrNotPaused       = errors.New("not paused")
	ErrInvalidTiming   = errors.New("crossfade lead time must be >= fade duration")
)

// Defaults for Config. The lead time must stay >= the fade duration so the
// two channels overlap audibly instead of the fade-out being clipped by
// loop wraparound.
const (
	DefaultFadeDuration     = 1500 * time.Millisecond
	DefaultLeadTime         = 2500 * time.Millisecond
	DefaultProgressInterval = 100 * time.Millisecond
)

// Config holds coordinator configuration.
type Config struct {
	FadeDuration     time.Duration // Length of each volume ramp
	LeadTime         time.Duration // Remaining time at which the crossfade triggers
	FadePollInterval time.Duration // Fader volume update interval
	ProgressInterval time.Duration // Playback progress polling interval
}

func (c Config) withDefaults() Config {
	if c.FadeDuration <= 0 {
		c.FadeDuration = DefaultFadeDuration
	}
	if c.LeadTime <= 0 {
		c.LeadTime = DefaultLeadTime
	}
	if c.FadePollInterval <= 0 {
		c.FadePollInterval = DefaultFadePollInterval
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	return c
}

// Validate checks the configuration invariant. A lead time shorter than the
// fade duration is a configuration error, not a runtime condition.
func (c Config) Validate() error {
	if c.LeadTime < c.FadeDuration {
		return errors.Wrapf(ErrInvalidTiming, "lead=%v fade=%v", c.LeadTime, c.FadeDuration)
	}
	return nil
}

// Coordinator watches playback progress of the active channel, triggers the
// crossfade near the loop boundary, and orchestrates the two faders and the
// channel-role swap.
//
// The guard latch (crossfading) only de-duplicates the trigger condition for
// a single boundary crossing. It is released as soon as the fade jobs are
// dispatched, not when they complete; under pathological timer delay a
// second trigger can therefore fire before the first fade-out has audibly
// finished. That timing is intentional and must not be "fixed" here.
type Coordinator struct {
	mu sync.Mutex

	cfg   Config
	pair  *Pair
	fader *Fader

	state       State
	current     *clip.Clip
	crossfading bool // guard latch, one crossfade trigger per boundary

	progressCancel context.CancelFunc

	eventCh chan Event
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCoordinator creates a coordinator over two fixed channels.
// It fails fast when the crossfade timing invariant is violated.
func NewCoordinator(cfg Config, a, b Channel) (*Coordinator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		cfg:     cfg,
		pair:    NewPair(a, b),
		fader:   NewFader(cfg.FadePollInterval),
		state:   StateIdle,
		eventCh: make(chan Event, 10),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Events returns the event channel.
func (c *Coordinator) Events() <-chan Event {
	return c.eventCh
}

// State returns the current engine state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the clip the engine is looping, if any.
func (c *Coordinator) Current() (clip.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return clip.Clip{}, false
	}
	return *c.current, true
}

// Elapsed returns the playback position of the active channel. Immediately
// after a crossfade trigger this tracks the incoming channel, so the readout
// resets to near zero instead of jumping backward.
func (c *Coordinator) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return c.pair.Active().Position()
}

// Duration returns the clip length: the loaded source length when known,
// the catalog-reported duration otherwise.
func (c *Coordinator) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durationLocked()
}

func (c *Coordinator) durationLocked() time.Duration {
	if c.current == nil {
		return 0
	}
	if d := c.pair.Active().Duration(); d > 0 {
		return d
	}
	return c.current.Duration
}

// Progress returns the elapsed fraction in [0, 1].
func (c *Coordinator) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.durationLocked()
	if c.current == nil || total <= 0 {
		return 0
	}
	frac := float64(c.pair.Active().Position()) / float64(total)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// Play binds the clip to the active channel and starts looping it: seek to
// 0, volume 0, play, fade in. Any previous clip is stopped and both
// channels reset first. A source load failure leaves the engine Idle with
// no automatic retry.
func (c *Coordinator) Play(cl clip.Clip) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !cl.Playable() {
		return ErrClipNotPlayable
	}

	c.resetLocked()

	active := c.pair.Active()
	if err := active.Bind(cl); err != nil {
		c.sendEventLocked(Event{Type: EventSourceFailed, Clip: &cl, State: c.state})
		return errors.Wrapf(err, "failed to load clip source: id=%s", cl.ID)
	}

	active.SetPosition(0)
	active.SetVolume(0)
	active.Play()

	c.current = &cl
	c.state = StatePlaying

	c.fader.Start(active, FadeIn, c.cfg.FadeDuration, nil)
	c.startProgressLocked(cl)

	zlog.Debug().Msgf("loop: clip started: id=%s title=%s duration=%v", cl.ID, cl.Title, cl.Duration)
	c.sendEventLocked(Event{Type: EventClipStarted, Clip: &cl, State: c.state})
	return nil
}

// Pause pauses both channels immediately, regardless of which is active,
// cancels any in-flight fade jobs, and clears the crossfade guard. The
// channels keep their current volumes and positions.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying && c.state != StateCrossfading {
		return
	}

	c.fader.CancelAll()
	c.crossfading = false
	c.stopProgressLocked()
	c.pair.Each(func(ch Channel) { ch.Pause() })

	c.state = StatePaused
	c.sendEventLocked(Event{Type: EventStateChanged, Clip: c.current, State: c.state})
}

// Resume resumes the active channel at its current volume and position.
// No fade is replayed.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return ErrNotPaused
	}

	c.pair.Active().Play()
	c.state = StatePlaying
	if c.current != nil {
		c.startProgressLocked(*c.current)
	}

	c.sendEventLocked(Event{Type: EventStateChanged, Clip: c.current, State: c.state})
	return nil
}

// Seek moves the active channel to pos. The crossfade guard is cleared
// unconditionally: a seek backward past the trigger point mid-fade must
// never leave the latch stuck, silencing all future loop transitions.
func (c *Coordinator) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}
	c.crossfading = false
	c.pair.Active().SetPosition(pos)
}

// Stop pauses and resets both channels, cancels all fade jobs, clears the
// guard, and unbinds the clip.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	stopped := c.current
	c.resetLocked()
	if stopped != nil {
		c.sendEventLocked(Event{Type: EventStopped, Clip: stopped, State: c.state})
	}
}

// Close stops playback and releases the event channel.
func (c *Coordinator) Close() {
	c.Stop()
	c.cancel()
	close(c.eventCh)
}

// resetLocked returns the engine to Idle: all timers cancelled, both
// channels paused, rewound, silenced and unbound.
func (c *Coordinator) resetLocked() {
	c.fader.CancelAll()
	c.crossfading = false
	c.stopProgressLocked()

	c.pair.Each(func(ch Channel) {
		ch.Pause()
		ch.SetPosition(0)
		ch.SetVolume(0)
		ch.Unbind()
	})

	c.current = nil
	c.state = StateIdle
}

// startProgressLocked starts the progress polling ticker for cl.
func (c *Coordinator) startProgressLocked(cl clip.Clip) {
	c.stopProgressLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.progressCancel = cancel
	interval := c.cfg.ProgressInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.onProgressTick(cl)
			}
		}
	}()
}

func (c *Coordinator) stopProgressLocked() {
	if c.progressCancel != nil {
		c.progressCancel()
		c.progressCancel = nil
	}
}

// onProgressTick checks the crossfade trigger condition. cl identifies the
// clip the ticker was started for; ticks outlasting their clip are stale
// and discarded.
func (c *Coordinator) onProgressTick(cl clip.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.current.Same(cl) {
		return // stale tick
	}
	if c.state != StatePlaying && c.state != StateCrossfading {
		return
	}

	active := c.pair.Active()
	if bound, ok := active.Bound(); !ok || !bound.Same(cl) {
		return
	}

	total := active.Duration()
	if total <= 0 {
		return // duration not known yet, trigger unreachable
	}

	remaining := total - active.Position()
	if remaining > c.cfg.LeadTime {
		return
	}
	if c.crossfading {
		return // guard already set: normal race outcome of polling, not an error
	}
	if !active.Playing() {
		return
	}

	c.beginCrossfadeLocked(cl, active)
}

// beginCrossfadeLocked spins up the inactive channel at the clip start,
// fades it in while fading the retiring channel out, then swaps the roles
// and releases the guard synchronously. The swap happens here, at dispatch,
// not at fade completion: readouts must immediately track the incoming
// channel.
func (c *Coordinator) beginCrossfadeLocked(cl clip.Clip, retiring Channel) {
	c.crossfading = true

	next := c.pair.Inactive()
	if bound, ok := next.Bound(); !ok || !bound.Same(cl) {
		if err := next.Bind(cl); err != nil {
			// Keep playing to the natural end rather than going silent.
			zlog.Warn().Msgf("loop: inactive channel failed to load clip, skipping crossfade: id=%s error=%v", cl.ID, err)
			c.crossfading = false
			return
		}
	}

	next.SetPosition(0)
	next.SetVolume(0)
	next.Play()

	c.fader.Start(next, FadeIn, c.cfg.FadeDuration, nil)
	c.fader.Start(retiring, FadeOut, c.cfg.FadeDuration, func() {
		c.onFadeOutDone(cl, retiring)
	})

	c.pair.Swap()
	c.crossfading = false
	c.state = StateCrossfading

	zlog.Debug().Msgf("loop: crossfade started: id=%s fade=%v", cl.ID, c.cfg.FadeDuration)
	c.sendEventLocked(Event{Type: EventCrossfadeStarted, Clip: c.current, State: c.state})
}

// onFadeOutDone parks the fully faded-out channel: paused, rewound to 0,
// ready for the next boundary crossing.
func (c *Coordinator) onFadeOutDone(cl clip.Clip, retired Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if bound, ok := retired.Bound(); !ok || !bound.Same(cl) {
		return // superseded mid-fade
	}

	retired.Pause()
	retired.SetPosition(0)

	if c.current != nil && c.current.Same(cl) && c.state == StateCrossfading {
		c.state = StatePlaying
		c.sendEventLocked(Event{Type: EventStateChanged, Clip: c.current, State: c.state})
	}
}

// sendEventLocked sends an event without blocking.
func (c *Coordinator) sendEventLocked(e Event) {
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}
