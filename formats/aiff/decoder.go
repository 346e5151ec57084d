package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audpass/audio"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.RawSource. AIFF data
// is big-endian on disk; it is handed out little-endian like every other
// RawSource.
type source struct {
	dec    aiffReader
	format audio.SampleFormat
	intBuf *goaudio.IntBuffer
	eof    bool
}

func newSource(dec aiffReader, rate, channels, bits int) (*source, error) {
	switch bits {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	f := audio.SampleFormat{
		SampleRate:    rate,
		BitsPerSample: bits,
		Encoding:      audio.EncodingPCM,
		Channels:      channels,
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	return &source{dec: dec, format: f}, nil
}

func (s *source) Format() audio.SampleFormat { return s.format }
func (s *source) Close() error               { return nil }

func (s *source) Read(p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	want := len(p) / s.format.FrameBytes() * s.format.Channels
	if want == 0 {
		return 0, nil
	}
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, want)}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	n -= n % s.format.Channels
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("reading aiff samples: %w", err)
		}
		s.eof = true
		return 0, io.EOF
	}

	data := s.intBuf.Data[:n]
	if s.format.BitsPerSample == 8 {
		// AIFF 8-bit is signed, the canonical 8-bit layout is unsigned.
		for i := range data {
			data[i] += 128
		}
	}

	return audio.PackInts(p, data, s.format.BitsPerSample)
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.RawSource, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return newSource(dec, format.SampleRate, format.NumChannels, int(dec.BitDepth))
}
