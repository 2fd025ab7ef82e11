// Package audio provides sound playback and capture for the engine. Playback and capture run on
// portaudio streams, files are decoded to and encoded from float32 PCM by ffmpeg, and several
// files can be decoded at once on a worker pool.
package audio

import (
	"errors"
	"time"
)

// ErrNotLoaded is returned when a Player is asked to play before a sound was loaded.
var ErrNotLoaded = errors.New("audio: no sound loaded")

// State is the playback state of a Player.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "stopped"
}

// Source is a decoded sound held in memory as interleaved float32 samples.
type Source struct {
	Path       string
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames returns the number of sample frames (samples per channel).
func (s *Source) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// Duration returns the playback length of the source.
func (s *Source) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.SampleRate)
}
