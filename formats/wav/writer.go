// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audpass/audio"
)

// Writer encodes raw interleaved frames of a fixed SampleFormat into a WAV
// stream. The header is finalized by Close, which is why the destination
// must be seekable.
type Writer struct {
	enc    *wav.Encoder
	format audio.SampleFormat
	quant  audio.QuantizeFunc
	intBuf *goaudio.IntBuffer
	raw    []byte
}

func formatTag(f audio.SampleFormat) int {
	if f.Encoding == audio.EncodingFloat {
		return formatFloat
	}
	return formatPCM
}

// CheckFormat reports whether a Writer can encode f.
func CheckFormat(f audio.SampleFormat) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := sampleFormat(formatTag(f), f.BitsPerSample, f.SampleRate, f.Channels)
	return err
}

// NewWriter starts a WAV stream in format f. PCM 8/16/24/32 and float 32
// are supported.
func NewWriter(w io.WriteSeeker, f audio.SampleFormat) (*Writer, error) {
	if err := CheckFormat(f); err != nil {
		return nil, err
	}
	tag := formatTag(f)

	quant, err := audio.QuantizerFor(f)
	if err != nil {
		return nil, err
	}

	wr := &Writer{
		enc:    wav.NewEncoder(w, f.SampleRate, f.BitsPerSample, f.Channels, tag),
		format: f,
		quant:  quant,
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		},
	}

	// An empty buffer emits the RIFF, fmt and data headers so that a
	// stream closed without audio is still a valid file.
	if err := wr.enc.Write(wr.intBuf); err != nil {
		return nil, fmt.Errorf("writing wav header: %w", err)
	}

	return wr, nil
}

func (w *Writer) Format() audio.SampleFormat { return w.format }

// Write encodes the whole frames in p and returns the bytes consumed.
func (w *Writer) Write(p []byte) (int, error) {
	fb := w.format.FrameBytes()
	p = p[:len(p)/fb*fb]
	if len(p) == 0 {
		return 0, nil
	}

	samples := len(p) / w.format.BytesPerSample()
	if cap(w.intBuf.Data) < samples {
		w.intBuf.Data = make([]int, samples)
	}
	w.intBuf.Data = w.intBuf.Data[:samples]

	if _, err := audio.UnpackInts(w.intBuf.Data, p, w.format.BitsPerSample); err != nil {
		return 0, err
	}
	if err := w.enc.Write(w.intBuf); err != nil {
		return 0, fmt.Errorf("writing wav samples: %w", err)
	}

	return len(p), nil
}

// WriteSamples quantizes canonical samples to the writer format and encodes
// them.
func (w *Writer) WriteSamples(src []float32) error {
	need := len(src) * w.format.BytesPerSample()
	if cap(w.raw) < need {
		w.raw = make([]byte, need)
	}
	n := w.quant(w.raw[:need], src)
	_, err := w.Write(w.raw[:n*w.format.BytesPerSample()])
	return err
}

// Close patches the header sizes. The underlying writer is left open.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}
	return nil
}
