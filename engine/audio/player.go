package audio

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Player plays one sound at a time on an output stream.
type Player interface {
	// Load decodes the file at path and makes it the current sound, stopping any playback.
	//
	// Parameters:
	//   - path: the sound file
	//
	// Returns:
	//   - error: an error if the file cannot be decoded
	Load(path string) error

	// SetSource makes an already decoded sound the current one, stopping any playback.
	//
	// Parameters:
	//   - src: the decoded sound
	SetSource(src *Source)

	// Source returns the current sound, or nil.
	Source() *Source

	// Play starts the current sound from the beginning.
	//
	// Returns:
	//   - error: ErrNotLoaded when nothing is loaded, or an error from the output stream
	Play() error

	// Stop ends playback and closes the output stream.
	//
	// Returns:
	//   - error: an error from the output stream
	Stop() error

	// Pause silences playback while keeping the position. It does nothing unless playing.
	Pause()

	// Resume continues paused playback. It does nothing unless paused.
	Resume()

	// SetVolume sets the gain applied to every sample. The value is clamped to [0, 1].
	SetVolume(v float32)

	// Volume returns the gain applied to every sample.
	Volume() float32

	// State returns the playback state.
	State() State
}

type player struct {
	mu     *sync.Mutex
	cfg    config
	source *Source
	stream Stream
	pos    int
	volume float32
	state  State
}

var _ Player = &player{}

// NewPlayer creates a Player with full volume and nothing loaded.
//
// Parameters:
//   - options: the AudioBuilderOption values to apply
//
// Returns:
//   - Player: the player
func NewPlayer(options ...AudioBuilderOption) Player {
	return &player{
		mu:     &sync.Mutex{},
		cfg:    newConfig(options...),
		volume: 1,
	}
}

func (p *player) Load(path string) error {
	src, err := p.cfg.decoder.Decode(path)
	if err != nil {
		return err
	}
	p.SetSource(src)
	return nil
}

func (p *player) SetSource(src *Source) {
	if err := p.Stop(); err != nil {
		common.Logger().Warn("audio stop failed", "error", err)
	}
	p.mu.Lock()
	p.source = src
	p.mu.Unlock()
}

func (p *player) Source() *Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

func (p *player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return ErrNotLoaded
	}
	p.pos = 0
	if p.stream == nil {
		s, err := p.cfg.device.OpenOutput(p.source.SampleRate, p.source.Channels, p.fill)
		if err != nil {
			return fmt.Errorf("failed to play %s: %w", p.source.Path, err)
		}
		if err := s.Start(); err != nil {
			s.Close()
			return fmt.Errorf("failed to play %s: %w", p.source.Path, err)
		}
		p.stream = s
	}
	p.state = StatePlaying
	return nil
}

func (p *player) Stop() error {
	p.mu.Lock()
	s := p.stream
	p.stream = nil
	p.state = StateStopped
	p.pos = 0
	p.mu.Unlock()

	// The stream callback takes p.mu, so the stream is stopped without holding it.
	if s == nil {
		return nil
	}
	if err := s.Stop(); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}

func (p *player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		p.state = StatePaused
	}
}

func (p *player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePaused {
		p.state = StatePlaying
	}
}

func (p *player) SetVolume(v float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = common.Clamp(v, 0, 1)
}

func (p *player) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// fill is the output stream callback. Reaching the end of the sound stops playback but leaves
// the stream open until Stop.
func (p *player) fill(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	if p.state == StatePlaying && p.source != nil {
		n = copy(out, p.source.Samples[p.pos:])
		for i := range n {
			out[i] *= p.volume
		}
		p.pos += n
		if p.pos >= len(p.source.Samples) {
			p.state = StateStopped
			p.pos = 0
		}
	}
	clear(out[n:])
}
