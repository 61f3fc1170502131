package filter

import (
	"context"

	"github.com/okmt/cliploop/internal/domain/clip"
)

func init() {
	Register("preview_available_filter", func() Filter {
		return &PreviewAvailableFilter{}
	})
}

// PreviewAvailableFilter rejects clips without a playable preview source.
// Catalogs omit preview URLs for some tracks; such a clip could be posted
// but never looped, so it is refused up front.
type PreviewAvailableFilter struct{}

// Name returns the filter name.
func (f *PreviewAvailableFilter) Name() string {
	return "preview_available_filter"
}

// Description returns a human-readable description.
func (f *PreviewAvailableFilter) Description() string {
	return "Rejects clips without a playable preview source"
}

// ReturnCodes returns the codes this filter can return.
func (f *PreviewAvailableFilter) ReturnCodes() []string {
	return []string{"preview_unavailable"}
}

// ValidateConfig validates the filter configuration.
func (f *PreviewAvailableFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

// Check performs the filter check.
func (f *PreviewAvailableFilter) Check(ctx context.Context, c clip.Clip) Result {
	if !c.Playable() {
		return Reject("preview_unavailable")
	}
	return Accept()
}
