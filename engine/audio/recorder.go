package audio

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Recorder captures the default input device and writes the capture to a file when stopped.
type Recorder interface {
	// Path returns the file the capture is written to.
	Path() string

	// Start begins capturing. It does nothing while already recording.
	//
	// Returns:
	//   - error: an error if the input stream cannot be opened
	Start() error

	// Stop ends the capture and writes it to Path. It does nothing unless recording.
	// The WithOnStop callback, if any, runs after the file is written.
	//
	// Returns:
	//   - error: an error from the input stream or the encoder
	Stop() error

	// IsRecording reports whether a capture is running.
	IsRecording() bool
}

type recorder struct {
	mu        *sync.Mutex
	cfg       config
	path      string
	stream    Stream
	samples   []float32
	limit     int
	recording bool
	dropped   bool
}

var _ Recorder = &recorder{}

// NewRecorder creates a Recorder that writes to path. The file format follows the path's
// extension.
//
// Parameters:
//   - path: the output file
//   - options: the AudioBuilderOption values to apply
//
// Returns:
//   - Recorder: the recorder
func NewRecorder(path string, options ...AudioBuilderOption) Recorder {
	if path == "" {
		panic("audio: NewRecorder requires an output path")
	}
	cfg := newConfig(options...)
	limit := 0
	if cfg.maxDuration > 0 {
		limit = int(cfg.maxDuration.Seconds()*float64(cfg.sampleRate)) * cfg.channels
	}
	return &recorder{
		mu:    &sync.Mutex{},
		cfg:   cfg,
		path:  path,
		limit: limit,
	}
}

func (r *recorder) Path() string {
	return r.path
}

func (r *recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return nil
	}
	s, err := r.cfg.device.OpenInput(r.cfg.sampleRate, r.cfg.channels, r.capture)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", r.path, err)
	}
	r.samples = r.samples[:0]
	r.dropped = false
	r.recording = true
	if err := s.Start(); err != nil {
		r.recording = false
		s.Close()
		return fmt.Errorf("failed to record %s: %w", r.path, err)
	}
	r.stream = s
	return nil
}

func (r *recorder) Stop() error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil
	}
	s := r.stream
	r.stream = nil
	r.recording = false
	r.mu.Unlock()

	err := s.Stop()
	if cerr := s.Close(); err == nil {
		err = cerr
	}

	r.mu.Lock()
	samples := r.samples
	r.samples = nil
	r.mu.Unlock()

	if err == nil {
		err = r.cfg.encoder.Encode(r.path, samples, r.cfg.sampleRate, r.cfg.channels)
	}
	if r.cfg.onStop != nil {
		r.cfg.onStop(r.path, err)
	}
	return err
}

func (r *recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// capture is the input stream callback.
func (r *recorder) capture(in []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	n := len(in)
	if r.limit > 0 && len(r.samples)+n > r.limit {
		n = r.limit - len(r.samples)
		if !r.dropped {
			r.dropped = true
			common.Logger().Warn("recording limit reached, dropping audio frames", "path", r.path)
		}
	}
	r.samples = append(r.samples, in[:n]...)
}
