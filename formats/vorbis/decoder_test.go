// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audpass/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	offset     int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := len(buf) / m.channels * m.channels
	n = copy(buf[:n], m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func readAll(t *testing.T, src audio.RawSource) []float32 {
	t.Helper()

	raw := make([]byte, 256)
	var out []float32
	tmp := make([]float32, 64)
	for {
		n, err := src.Read(raw)
		k, nerr := audio.Normalize(src.Format(), tmp, raw[:n])
		if nerr != nil {
			t.Fatal(nerr)
		}
		out = append(out, tmp[:k]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not OGG Vorbis data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	if err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2})
	if err != nil {
		t.Fatal(err)
	}

	want := audio.VariantFloat32.Format(48000, 2)
	if src.Format() != want {
		t.Errorf("Format() = %+v, want %+v", src.Format(), want)
	}
}

func TestSource_InvalidStream(t *testing.T) {
	t.Parallel()

	_, err := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 0})
	if !errors.Is(err, audio.ErrInvalidChannels) {
		t.Errorf("newSource() error = %v, want ErrInvalidChannels", err)
	}
}

func TestSource_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []float32
	}{
		{"mono", 1, []float32{0, 0.5, -0.5, 1, -1}},
		{"stereo", 2, []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}},
		{"5.1", 6, make([]float32, 6*50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: tt.channels, samples: tt.samples})
			if err != nil {
				t.Fatal(err)
			}

			got := readAll(t, src)
			if len(got) != len(tt.samples) {
				t.Fatalf("read %d samples, want %d", len(got), len(tt.samples))
			}
			for i := range got {
				if got[i] != tt.samples[i] {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.samples[i])
				}
			}
		})
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 1, err: io.ErrUnexpectedEOF})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.Read(make([]byte, 16)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Read() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_SmallBuffer(t *testing.T) {
	t.Parallel()

	src, _ := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: []float32{1, 1}})
	n, err := src.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Errorf("Read(7 bytes) = %d, %v, want 0, nil", n, err)
	}
}

func BenchmarkSource_Read(b *testing.B) {
	samples := make([]float32, 48000*2)
	raw := make([]byte, 8192)

	b.ReportAllocs()
	for b.Loop() {
		src, _ := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: samples})
		for {
			if _, err := src.Read(raw); err != nil {
				break
			}
		}
	}
}
