// Package audio provides the beep-based playback backend.
//
// Every channel sits in the speaker mixer permanently behind a switchable
// streamer, so swapping or draining a clip never removes the channel from
// the mixer.
package audio

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// MixerSampleRate is the fixed speaker sample rate. All decoded clips are
// resampled to it.
const MixerSampleRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// InitSpeaker initializes the global speaker. Safe to call more than once;
// only the first call takes effect.
func InitSpeaker() error {
	speakerOnce.Do(func() {
		if err := speaker.Init(MixerSampleRate, MixerSampleRate.N(time.Second/10)); err != nil {
			speakerErr = errors.Wrap(err, "failed to initialize speaker")
		}
	})
	return speakerErr
}
