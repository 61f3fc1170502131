// Package loop provides the continuous-loop playback engine: two
// interchangeable playback channels holding the same clip, with a
// volume crossfade at the loop seam so the repeat is inaudible.
package loop

// State represents the engine state.
type State int

const (
	StateIdle        State = iota // No clip bound
	StatePlaying                  // Active channel audible
	StateCrossfading              // Both channels audible, fades in flight
	StatePaused                   // User paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateCrossfading:
		return "crossfading"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
