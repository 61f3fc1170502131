// Package visibility provides scroll-driven auto-play: whichever feed item
// becomes sufficiently visible takes over the single playback session.
package visibility

import (
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

// DefaultThreshold is the visibility ratio at which an item takes over
// playback.
const DefaultThreshold = 0.5

// Player is the slice of the playback session the controller drives.
type Player interface {
	Select(c clip.Clip) error
	Current() (clip.Clip, bool)
}

// Controller observes visibility-ratio change events for playable items and
// switches the session to an item when its ratio crosses the threshold
// while increasing. Items falling out of view never force a stop; only a
// newly visible item triggers a switch, and at most one item is playing at
// any time because all switches go through the single session.
type Controller struct {
	mu        sync.Mutex
	player    Player
	threshold float64

	currentItem string
	lastRatio   map[string]float64
}

// NewController creates a controller over the given player.
// threshold defaults to DefaultThreshold when non-positive.
func NewController(player Player, threshold float64) *Controller {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Controller{
		player:    player,
		threshold: threshold,
		lastRatio: make(map[string]float64),
	}
}

// Observe handles a visibility change event for one item. The event carries
// the item's new visibility ratio in [0, 1] and the clip attached to it.
func (c *Controller) Observe(itemID string, cl clip.Clip, ratio float64) error {
	c.mu.Lock()

	prev, seen := c.lastRatio[itemID]
	c.lastRatio[itemID] = ratio

	crossed := ratio >= c.threshold && (!seen || prev < c.threshold)
	if !crossed {
		c.mu.Unlock()
		return nil
	}

	// Idempotent on repeated above-threshold events for the item already
	// holding the session.
	if itemID == c.currentItem {
		if cur, ok := c.player.Current(); ok && cur.Same(cl) {
			c.mu.Unlock()
			return nil
		}
	}

	c.currentItem = itemID
	c.mu.Unlock()

	zlog.Debug().Msgf("visibility: item took over playback: item=%s clip=%s ratio=%.2f", itemID, cl.ID, ratio)
	// Select stops the previous auto-playing item's loop before starting
	// the new one.
	return c.player.Select(cl)
}

// CurrentItem returns the item currently holding auto-play, if any.
func (c *Controller) CurrentItem() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentItem, c.currentItem != ""
}

// Forget drops tracked state for an item that left the collection. Playback
// is left as-is.
func (c *Controller) Forget(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.lastRatio, itemID)
	if c.currentItem == itemID {
		c.currentItem = ""
	}
}
