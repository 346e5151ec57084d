// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
)

// formatDecoder hands out an in-memory source of a fixed format.
type formatDecoder struct {
	format SampleFormat
}

func (d formatDecoder) Decode(r io.Reader) (RawSource, error) {
	return newRawSource(d.format, make([]byte, 100*d.format.FrameBytes())), nil
}

// failingDecoder always returns an error
type failingDecoder struct{}

func (failingDecoder) Decode(io.Reader) (RawSource, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	wav := formatDecoder{VariantPCM16.Format(44100, 2)}
	mp3 := formatDecoder{VariantFloat32.Format(48000, 2)}

	registry := NewRegistry()
	registry.Register("wav", wav)
	registry.Register("wave", wav)
	registry.Register("mp3", mp3)

	tests := []struct {
		ext    string
		want   Decoder
		wantOK bool
	}{
		{"wav", wav, true},
		{"wave", wav, true},
		{"mp3", mp3, true},
		{"flac", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got, ok := registry.Get(tt.ext)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Get(%q) = %v, %v, want %v, %v", tt.ext, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("ogg", formatDecoder{VariantPCM16.Format(8000, 1)})
	registry.Register("ogg", formatDecoder{VariantFloat32.Format(48000, 2)})

	got, _ := registry.Get("ogg")
	if got.(formatDecoder).format.SampleRate != 48000 {
		t.Error("Register() did not replace the previous decoder")
	}
	if n := len(registry.Formats()); n != 1 {
		t.Errorf("Formats() has %d entries, want 1", n)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	exts := []string{"wav", "mp3", "ogg", "aiff"}

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ext := exts[(i/2)%len(exts)]
			if i%2 == 0 {
				registry.Register(ext, failingDecoder{})
			} else {
				registry.Get(ext)
				registry.Formats()
			}
		}()
	}
	wg.Wait()

	got := registry.Formats()
	slices.Sort(got)
	want := slices.Clone(exts)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tone.WAV")
	if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}

	format := VariantPCM16.Format(44100, 2)
	registry := NewRegistry()
	registry.Register("wav", formatDecoder{format})
	registry.Register("bad", failingDecoder{})

	src, err := registry.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	if got := src.Format(); got != format {
		t.Errorf("Format() = %v, want %v", got, format)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := registry.Open(filepath.Join(dir, "tone.flac")); !errors.Is(err, ErrUnknownExtension) {
		t.Errorf("unknown extension error = %v, want %v", err, ErrUnknownExtension)
	}
	if _, err := registry.Open(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	badPath := filepath.Join(dir, "x.bad")
	if err := os.WriteFile(badPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Open(badPath); err == nil {
		t.Error("Open() with failing decoder succeeded")
	}
}

func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("wav", failingDecoder{})

	b.ReportAllocs()
	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}

func BenchmarkRegistry_ConcurrentRegisterGet(b *testing.B) {
	registry := NewRegistry()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				registry.Register("wav", failingDecoder{})
			} else {
				_, _ = registry.Get("wav")
			}
			i++
		}
	})
}
