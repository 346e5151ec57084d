// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source is a stream of canonical samples.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames).
	ReadSamples(dst []float32) (n int, err error)

	// Close releases any resources.
	Close() error
}

// RawSource is a stream of raw interleaved little-endian samples, as a
// capture device or a decoded file would deliver them.
type RawSource interface {
	Format() SampleFormat
	// Read fills p with whole frames and returns the number of bytes
	// written. It returns io.EOF once the stream is exhausted.
	Read(p []byte) (int, error)
	Close() error
}

// Decoder constructs a RawSource from an input reader.
type Decoder interface {
	Decode(r io.Reader) (RawSource, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the registered format keys.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	return out
}

// Open decodes the file at path with the decoder registered for its
// extension, matched case-insensitively. Closing the returned source closes
// the file.
func (r *Registry) Open(path string) (RawSource, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &fileSource{RawSource: src, f: f}, nil
}

type fileSource struct {
	RawSource
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.RawSource.Close(), s.f.Close())
}
