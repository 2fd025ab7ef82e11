package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/Carmen-Shannon/oxy-fx/common"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Decoder turns a sound file into a Source.
type Decoder interface {
	Decode(path string) (*Source, error)
}

// Encoder writes interleaved float32 samples to a sound file.
type Encoder interface {
	Encode(path string, samples []float32, sampleRate, channels int) error
}

// ffmpegCodec runs the ffmpeg binary, exchanging raw f32le PCM over pipes.
type ffmpegCodec struct {
	path       string
	sampleRate int
	channels   int
}

var (
	_ Decoder = &ffmpegCodec{}
	_ Encoder = &ffmpegCodec{}
)

func (c *ffmpegCodec) Decode(path string) (*Source, error) {
	var out bytes.Buffer
	cmd := ffmpeg.Input(path, ffmpeg.KwArgs{}).
		Output("pipe:", ffmpeg.KwArgs{
			"f":   "f32le",
			"c:a": "pcm_f32le",
			"ac":  strconv.Itoa(c.channels),
			"ar":  strconv.Itoa(c.sampleRate),
		}).
		WithOutput(&out)
	if c.path != "" {
		cmd = cmd.SetFfmpegPath(c.path)
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	samples := bytesToSamples(out.Bytes())
	common.Logger().Debug("audio decoded", "path", path, "samples", len(samples))
	return &Source{Path: path, SampleRate: c.sampleRate, Channels: c.channels, Samples: samples}, nil
}

func (c *ffmpegCodec) Encode(path string, samples []float32, sampleRate, channels int) error {
	cmd := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":  "f32le",
		"ar": strconv.Itoa(sampleRate),
		"ac": strconv.Itoa(channels),
	}).
		Output(path, ffmpeg.KwArgs{"ac": strconv.Itoa(channels)}).
		OverWriteOutput().
		WithInput(bytes.NewReader(samplesToBytes(samples)))
	if c.path != "" {
		cmd = cmd.SetFfmpegPath(c.path)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// bytesToSamples reads little-endian float32 PCM. A trailing partial sample is ignored.
func bytesToSamples(b []byte) []float32 {
	samples := make([]float32, len(b)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return samples
}

func samplesToBytes(samples []float32) []byte {
	b := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}
