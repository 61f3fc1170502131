package filter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/okmt/cliploop/internal/domain/clip"
)

func init() {
	Register("duration_limit_filter", func() Filter {
		return NewDurationLimitFilter()
	})
}

// DurationLimitConfig holds duration limit settings.
type DurationLimitConfig struct {
	MinSeconds float64 `yaml:"min_seconds" mapstructure:"min_seconds" default:"0" validate:"gte=0"`
	MaxSeconds float64 `yaml:"max_seconds" mapstructure:"max_seconds" default:"0" validate:"gte=0"`
}

// DurationLimitFilter rejects clips outside the configured duration range.
// The loop engine targets short clips; a zero bound disables that side of
// the check.
type DurationLimitFilter struct {
	config *DurationLimitConfig
}

// NewDurationLimitFilter creates a new duration limit filter.
func NewDurationLimitFilter() *DurationLimitFilter {
	return &DurationLimitFilter{}
}

// Name returns the filter name.
func (f *DurationLimitFilter) Name() string {
	return "duration_limit_filter"
}

// Description returns a human-readable description.
func (f *DurationLimitFilter) Description() string {
	return "Rejects clips shorter or longer than the configured bounds"
}

// ReturnCodes returns the codes this filter can return.
func (f *DurationLimitFilter) ReturnCodes() []string {
	return []string{"duration_limit_exceeded"}
}

// ValidateConfig validates and stores the filter configuration.
func (f *DurationLimitFilter) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	if config.MaxSeconds > 0 && config.MinSeconds > config.MaxSeconds {
		return errors.Newf("min_seconds (%v) must not exceed max_seconds (%v)", config.MinSeconds, config.MaxSeconds)
	}
	f.config = &config
	return nil
}

// Check performs the filter check.
func (f *DurationLimitFilter) Check(ctx context.Context, c clip.Clip) Result {
	if f.config == nil {
		return Accept()
	}

	min := time.Duration(f.config.MinSeconds * float64(time.Second))
	max := time.Duration(f.config.MaxSeconds * float64(time.Second))

	if min > 0 && c.Duration < min {
		return Reject("duration_limit_exceeded")
	}
	if max > 0 && c.Duration > max {
		return Reject("duration_limit_exceeded")
	}
	return Accept()
}
