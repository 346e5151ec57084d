// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"

	"github.com/ik5/audpass/audio"
)

// Signal generates interleaved canonical samples from a waveform function.
type Signal struct {
	sampleRate int
	channels   int
	pos        int // frames generated so far
	waveform   func(frame int, channel int) float32
}

// NewSignal creates a signal generator.
// waveform returns the sample value for a frame index and channel.
func NewSignal(sampleRate, channels int, waveform func(frame int, channel int) float32) *Signal {
	return &Signal{
		sampleRate: sampleRate,
		channels:   channels,
		waveform:   waveform,
	}
}

// NewSine creates a signal carrying the same sine wave on every channel.
func NewSine(sampleRate, channels int, frequency float64, amplitude float32) *Signal {
	return NewSignal(sampleRate, channels, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return amplitude * float32(math.Sin(2*math.Pi*frequency*t))
	})
}

// NewConstant creates a signal with a constant value.
func NewConstant(sampleRate, channels int, value float32) *Signal {
	return NewSignal(sampleRate, channels, func(frame int, channel int) float32 {
		return value
	})
}

func (s *Signal) SampleRate() int { return s.sampleRate }
func (s *Signal) Channels() int   { return s.channels }

// Reset rewinds the generator to frame zero.
func (s *Signal) Reset() {
	s.pos = 0
}

// Next returns the following frames of the signal.
func (s *Signal) Next(frames int) []float32 {
	out := make([]float32, frames*s.channels)
	for f := range frames {
		for ch := range s.channels {
			out[f*s.channels+ch] = s.waveform(s.pos+f, ch)
		}
	}
	s.pos += frames
	return out
}

// NextBytes returns the following frames quantized to f, as a device
// would deliver them. f.Channels is ignored in favor of the signal's.
func (s *Signal) NextBytes(f audio.SampleFormat, frames int) []byte {
	samples := s.Next(frames)
	v, err := f.Variant()
	if err != nil {
		panic(err)
	}
	out := make([]byte, len(samples)*v.Width())
	if _, err := audio.Quantize(f, out, samples); err != nil {
		panic(err)
	}
	return out
}

// RMS is the root mean square of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
