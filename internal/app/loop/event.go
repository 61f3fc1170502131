package loop

import "github.com/okmt/cliploop/internal/domain/clip"

// EventType represents an engine event type.
type EventType int

const (
	EventClipStarted      EventType = iota // A clip was bound and started playing
	EventCrossfadeStarted                  // Loop boundary reached, fades dispatched, roles swapped
	EventStateChanged                      // Pause/resume or crossfade settled
	EventStopped                           // Playback stopped, channels reset
	EventSourceFailed                      // Clip source failed to load
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventClipStarted:
		return "clip_started"
	case EventCrossfadeStarted:
		return "crossfade_started"
	case EventStateChanged:
		return "state_changed"
	case EventStopped:
		return "stopped"
	case EventSourceFailed:
		return "source_failed"
	default:
		return "unknown"
	}
}

// Event represents an engine event.
type Event struct {
	Type  EventType
	Clip  *clip.Clip // Clip concerned (nil for some events)
	State State      // Engine state after the event
}
