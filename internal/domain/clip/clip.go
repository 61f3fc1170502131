// Package clip provides the Clip domain entity.
package clip

import "time"

// Clip represents a short playable audio clip selected from a catalog.
// Immutable once selected; the playback engine only consumes PreviewURI
// and Duration, the rest is display metadata passed through to clients.
type Clip struct {
	ID          string        // Catalog track ID (opaque)
	Title       string        // Track title
	Artist      string        // Primary artist name
	Album       string        // Album title
	CoverURL    string        // Cover art URL
	PreviewURI  string        // Playable source URI (HTTP URL or local path)
	Duration    time.Duration // Nominal duration as reported by the source (may be approximate)
	SourceName  string        // Catalog that produced this clip (e.g. "spotify", "itunes")
	CatalogURL  string        // Link back to the catalog page
}

// Playable reports whether the clip carries a usable source reference.
// Catalogs omit preview URLs for some tracks; those clips cannot loop.
func (c Clip) Playable() bool {
	return c.PreviewURI != "" && c.Duration > 0
}

// Same reports whether two clips refer to the same catalog track.
// Used as the identity check that discards stale timer ticks after
// the bound clip has been superseded.
func (c Clip) Same(other Clip) bool {
	return c.ID != "" && c.ID == other.ID
}
