package audio

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/gordonklaus/portaudio"
)

// Stream is an open audio stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Device opens audio streams. Callbacks run on the device's audio thread and receive
// interleaved float32 buffers they must not retain.
type Device interface {
	// OpenOutput opens a playback stream that pulls samples from fill.
	//
	// Parameters:
	//   - sampleRate: the stream rate in Hz
	//   - channels: the output channel count
	//   - fill: called with the buffer to fill for each period
	//
	// Returns:
	//   - Stream: the stopped stream
	//   - error: an error if the stream cannot be opened
	OpenOutput(sampleRate, channels int, fill func(out []float32)) (Stream, error)

	// OpenInput opens a capture stream that pushes samples to capture.
	//
	// Parameters:
	//   - sampleRate: the stream rate in Hz
	//   - channels: the input channel count
	//   - capture: called with each captured buffer
	//
	// Returns:
	//   - Stream: the stopped stream
	//   - error: an error if the stream cannot be opened
	OpenInput(sampleRate, channels int, capture func(in []float32)) (Stream, error)
}

// portaudio must be initialized once per open stream and terminated as many times.
var (
	paMu    sync.Mutex
	paUsers int
)

func paAcquire() error {
	paMu.Lock()
	defer paMu.Unlock()
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	paUsers++
	return nil
}

func paRelease() error {
	paMu.Lock()
	defer paMu.Unlock()
	if paUsers == 0 {
		return nil
	}
	paUsers--
	return portaudio.Terminate()
}

type portAudioDevice struct{}

var _ Device = portAudioDevice{}

func (portAudioDevice) OpenOutput(sampleRate, channels int, fill func(out []float32)) (Stream, error) {
	return openPortAudio(sampleRate, channels, false, fill)
}

func (portAudioDevice) OpenInput(sampleRate, channels int, capture func(in []float32)) (Stream, error) {
	return openPortAudio(sampleRate, channels, true, capture)
}

func openPortAudio(sampleRate, channels int, input bool, cb func([]float32)) (Stream, error) {
	if err := paAcquire(); err != nil {
		return nil, err
	}
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		paRelease()
		return nil, fmt.Errorf("failed to find host api: %w", err)
	}

	var params portaudio.StreamParameters
	if input {
		params = portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
		params.Input.Channels = channels
	} else {
		params = portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
		params.Output.Channels = channels
	}
	params.SampleRate = float64(sampleRate)

	s, err := portaudio.OpenStream(params, cb)
	if err != nil {
		paRelease()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	common.Logger().Info("audio stream opened", "host", host.Name, "input", input, "rate", sampleRate, "channels", channels)
	return &portAudioStream{s: s}, nil
}

type portAudioStream struct {
	s      *portaudio.Stream
	closed bool
}

func (p *portAudioStream) Start() error {
	if err := p.s.Start(); err != nil {
		return fmt.Errorf("failed to start audio stream: %w", err)
	}
	return nil
}

func (p *portAudioStream) Stop() error {
	return p.s.Stop()
}

func (p *portAudioStream) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.s.Close(); err != nil {
		paRelease()
		return err
	}
	return paRelease()
}
