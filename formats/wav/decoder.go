package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audpass/audio"
)

// RIFF format tags.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// pcmReader is the part of wav.Decoder the source needs; it allows testing.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source hands out the data chunk as raw little-endian frames.
type source struct {
	dec    pcmReader
	format audio.SampleFormat
	intBuf *goaudio.IntBuffer
	eof    bool
}

func (s *source) Format() audio.SampleFormat { return s.format }
func (s *source) Close() error               { return nil }

func (s *source) Read(p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	frames := len(p) / s.format.FrameBytes()
	if frames == 0 {
		return 0, nil
	}

	want := frames * s.format.Channels
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, want)}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("reading wav samples: %w", err)
	}
	n -= n % s.format.Channels
	if n == 0 {
		s.eof = true
		return 0, io.EOF
	}

	return audio.PackInts(p, s.intBuf.Data[:n], s.format.BitsPerSample)
}

// sampleFormat maps a RIFF fmt chunk onto a SampleFormat.
func sampleFormat(tag, bits, rate, channels int) (audio.SampleFormat, error) {
	f := audio.SampleFormat{SampleRate: rate, BitsPerSample: bits, Channels: channels}

	switch tag {
	case formatPCM, formatExtensible:
		f.Encoding = audio.EncodingPCM
		switch bits {
		case 8, 16, 24, 32:
		default:
			return f, fmt.Errorf("%w: %d-bit pcm", ErrUnsupportedBitDepth, bits)
		}
	case formatFloat:
		// go-audio hands float samples back as their raw 32-bit pattern.
		f.Encoding = audio.EncodingFloat
		if bits != 32 {
			return f, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, bits)
		}
	default:
		return f, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWavLayout, tag)
	}

	return f, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.RawSource, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	f, err := sampleFormat(int(dec.WavAudioFormat), int(dec.BitDepth), int(dec.SampleRate), int(dec.NumChans))
	if err != nil {
		return nil, err
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	return &source{dec: dec, format: f}, nil
}
