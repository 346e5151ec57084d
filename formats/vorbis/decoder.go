package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpass/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of values decoded (frames * channels).
	Read([]float32) (int, error)
}

// source re-encodes the decoder's float output as little-endian float32
// frames.
type source struct {
	dec    oggReader
	format audio.SampleFormat
	quant  audio.QuantizeFunc
	buf    []float32
}

func newSource(dec oggReader) (*source, error) {
	f := audio.VariantFloat32.Format(dec.SampleRate(), dec.Channels())
	if err := f.Validate(); err != nil {
		return nil, err
	}
	quant, err := audio.QuantizerFor(f)
	if err != nil {
		return nil, err
	}
	return &source{
		dec:    dec,
		format: f,
		quant:  quant,
		buf:    make([]float32, 4096),
	}, nil
}

func (s *source) Format() audio.SampleFormat { return s.format }
func (s *source) Close() error               { return nil }

func (s *source) Read(p []byte) (int, error) {
	values := len(p) / s.format.FrameBytes() * s.format.Channels
	if values == 0 {
		return 0, nil
	}
	if cap(s.buf) < values {
		s.buf = make([]float32, values)
	}
	s.buf = s.buf[:values]

	n, err := s.dec.Read(s.buf)
	n -= n % s.format.Channels
	if n > 0 {
		return s.quant(p, s.buf[:n]) * 4, nil
	}
	if err == nil {
		return 0, nil
	}
	if errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return 0, fmt.Errorf("reading vorbis samples: %w", err)
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.RawSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening vorbis stream: %w", err)
	}

	return newSource(dec)
}
