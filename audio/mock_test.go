package audio

import (
	"io"
	"math"
)

// rawSource is a RawSource over an in-memory byte slice.
type rawSource struct {
	format SampleFormat
	data   []byte
	off    int
	closed bool
}

func newRawSource(f SampleFormat, data []byte) *rawSource {
	return &rawSource{format: f, data: data}
}

func (s *rawSource) Format() SampleFormat { return s.format }

func (s *rawSource) Read(p []byte) (int, error) {
	if s.off >= len(s.data) {
		return 0, io.EOF
	}
	fb := s.format.FrameBytes()
	n := min(len(p), len(s.data)-s.off)
	n -= n % fb
	copy(p, s.data[s.off:s.off+n])
	s.off += n
	return n, nil
}

func (s *rawSource) Close() error {
	s.closed = true
	return nil
}

// sine generates n frames of a sine wave, identical on every channel.
func sine(n, channels, rate int, freq float64, amp float32) []float32 {
	out := make([]float32, n*channels)
	for i := range n {
		v := amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// constant generates n frames holding v.
func constant(n, channels int, v float32) []float32 {
	out := make([]float32, n*channels)
	for i := range out {
		out[i] = v
	}
	return out
}

// maxStep is the largest absolute difference between consecutive samples of
// one channel.
func maxStep(samples []float32, channels, channel int) float32 {
	var m float32
	for i := channels + channel; i < len(samples); i += channels {
		d := samples[i] - samples[i-channels]
		if d < 0 {
			d = -d
		}
		m = max(m, d)
	}
	return m
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
