// Package session provides the per-clip playback session: the glue between
// user intent (select, toggle, pause, stop, seek) and the loop engine.
package session

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/app/loop"
	"github.com/okmt/cliploop/internal/domain/clip"
)

// Manager holds the per-clip playback state: current clip identity, the
// explicit user-pause flag, and UI-facing readouts derived from the active
// channel.
type Manager struct {
	mu         sync.Mutex
	coord      *loop.Coordinator
	userPaused bool
}

// NewManager creates a session over the given coordinator.
func NewManager(coord *loop.Coordinator) *Manager {
	return &Manager{coord: coord}
}

// Select starts looping the given clip, replacing whatever was playing.
func (m *Manager) Select(c clip.Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userPaused = false
	return m.coord.Play(c)
}

// Toggle starts the clip if it differs from the current one or nothing is
// playing, pauses if the same clip is already playing, and resumes if the
// same clip is paused. Pausing goes through the coordinator so that BOTH
// channels stop and in-flight fades are cancelled; muting only one channel
// would let the other resume audibly on an unrelated later trigger.
func (m *Manager) Toggle(c clip.Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.coord.Current()
	if ok && cur.Same(c) {
		switch m.coord.State() {
		case loop.StatePlaying, loop.StateCrossfading:
			m.coord.Pause()
			m.userPaused = true
			return nil
		case loop.StatePaused:
			m.userPaused = false
			return m.coord.Resume()
		}
	}

	m.userPaused = false
	return m.coord.Play(c)
}

// Pause pauses playback and records the explicit user intent.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.coord.Pause()
	m.userPaused = true
}

// Stop stops playback and resets both channels.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.coord.Stop()
	m.userPaused = false
}

// Seek moves the playhead of the active channel.
func (m *Manager) Seek(pos time.Duration) {
	m.coord.Seek(pos)
}

// Paused reports whether the user explicitly paused this session.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userPaused
}

// Current returns the clip the session is looping, if any.
func (m *Manager) Current() (clip.Clip, bool) {
	return m.coord.Current()
}

// State returns the engine state.
func (m *Manager) State() loop.State {
	return m.coord.State()
}

// Elapsed returns the active channel's position.
func (m *Manager) Elapsed() time.Duration {
	return m.coord.Elapsed()
}

// Duration returns the current clip length.
func (m *Manager) Duration() time.Duration {
	return m.coord.Duration()
}

// Progress returns the elapsed fraction in [0, 1].
func (m *Manager) Progress() float64 {
	return m.coord.Progress()
}

// Events returns the engine event stream.
func (m *Manager) Events() <-chan loop.Event {
	return m.coord.Events()
}

// Close shuts the session down.
func (m *Manager) Close() {
	zlog.Debug().Msg("session: closing")
	m.coord.Close()
}
