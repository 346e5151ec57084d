// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audpass/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels   = 2
	frameBytes = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    mp3Reader
	format audio.SampleFormat
	eof    bool
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:    dec,
		format: audio.VariantPCM16.Format(dec.SampleRate(), channels),
	}
}

func (s *source) Format() audio.SampleFormat { return s.format }
func (s *source) Close() error               { return nil }

func (s *source) Read(p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	p = p[:len(p)/frameBytes*frameBytes]
	if len(p) == 0 {
		return 0, nil
	}

	n, err := io.ReadFull(s.dec, p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		n -= n % frameBytes
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	default:
		return 0, fmt.Errorf("reading mp3 frames: %w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.RawSource, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	return newSource(dec), nil
}
