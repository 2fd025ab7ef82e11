package audio

import (
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

const (
	defaultSampleRate = 44100
	defaultChannels   = 1
	defaultWorkers    = 4
)

type config struct {
	sampleRate  int
	channels    int
	workers     int
	ffmpegPath  string
	maxDuration time.Duration
	device      Device
	decoder     Decoder
	encoder     Encoder
	onStop      func(path string, err error)
}

// AudioBuilderOption configures a Player, Recorder or Loader.
type AudioBuilderOption func(*config)

func newConfig(options ...AudioBuilderOption) config {
	c := config{}
	for _, opt := range options {
		opt(&c)
	}
	c.sampleRate = common.Coalesce(c.sampleRate, defaultSampleRate)
	c.channels = common.Coalesce(c.channels, defaultChannels)
	c.workers = common.Coalesce(c.workers, defaultWorkers)
	codec := &ffmpegCodec{path: c.ffmpegPath, sampleRate: c.sampleRate, channels: c.channels}
	if c.decoder == nil {
		c.decoder = codec
	}
	if c.encoder == nil {
		c.encoder = codec
	}
	if c.device == nil {
		c.device = portAudioDevice{}
	}
	return c
}

// WithSampleRate sets the sample rate files are decoded to and captures are recorded at.
//
// Parameters:
//   - rate: the rate in Hz, defaults to 44100
//
// Returns:
//   - AudioBuilderOption: the option
func WithSampleRate(rate int) AudioBuilderOption {
	return func(c *config) {
		c.sampleRate = rate
	}
}

// WithChannels sets the channel count files are decoded to and captures are recorded with.
//
// Parameters:
//   - channels: the channel count, defaults to 1
//
// Returns:
//   - AudioBuilderOption: the option
func WithChannels(channels int) AudioBuilderOption {
	return func(c *config) {
		c.channels = channels
	}
}

// WithWorkers sets how many files a Loader decodes at once.
//
// Parameters:
//   - n: the worker count, defaults to 4
//
// Returns:
//   - AudioBuilderOption: the option
func WithWorkers(n int) AudioBuilderOption {
	return func(c *config) {
		c.workers = n
	}
}

// WithFFmpegPath sets the ffmpeg binary used by the default codec. Empty uses ffmpeg from PATH.
//
// Parameters:
//   - path: the binary path
//
// Returns:
//   - AudioBuilderOption: the option
func WithFFmpegPath(path string) AudioBuilderOption {
	return func(c *config) {
		c.ffmpegPath = path
	}
}

// WithMaxDuration caps the length of a recording. Captured frames past the cap are dropped.
//
// Parameters:
//   - d: the cap, zero means unbounded
//
// Returns:
//   - AudioBuilderOption: the option
func WithMaxDuration(d time.Duration) AudioBuilderOption {
	return func(c *config) {
		c.maxDuration = d
	}
}

// WithDevice replaces the portaudio device.
func WithDevice(d Device) AudioBuilderOption {
	return func(c *config) {
		c.device = d
	}
}

// WithDecoder replaces the ffmpeg decoder.
func WithDecoder(d Decoder) AudioBuilderOption {
	return func(c *config) {
		c.decoder = d
	}
}

// WithEncoder replaces the ffmpeg encoder.
func WithEncoder(e Encoder) AudioBuilderOption {
	return func(c *config) {
		c.encoder = e
	}
}

// WithOnStop registers a callback run after a Recorder stops and its file has been written.
// err is non-nil if the capture could not be written.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - AudioBuilderOption: the option
func WithOnStop(fn func(path string, err error)) AudioBuilderOption {
	return func(c *config) {
		c.onStop = fn
	}
}
