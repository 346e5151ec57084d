// SPDX-License-Identifier: EPL-2.0

package audpass

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/formats/wav"
)

const (
	// convertChunk is the number of input frames handled per step.
	convertChunk = 4096

	// convertLag keeps the converter this many input frames behind the
	// decoder so it never runs dry before the end of the input.
	convertLag = 4
)

// Convert drains src through the same chain a live session uses (normalize,
// channel map, rate conversion, quantize) and writes the result to w as a
// WAV stream in format out. It returns the number of frames written.
//
// The converter runs input-driven exactly as it does live, so the output
// carries the engine's delay and its last few frames are dropped.
//
// Example:
//
//	src, _ := audpass.NewRegistry().Open("voice.mp3")
//	defer src.Close()
//	f, _ := os.Create("voice.wav")
//	defer f.Close()
//	frames, err := audpass.Convert(src, f, audio.VariantPCM16.Format(8000, 1), audio.EngineCubic)
func Convert(src audio.RawSource, w io.WriteSeeker, out audio.SampleFormat, engine audio.Engine) (int, error) {
	in := src.Format()
	if err := in.Validate(); err != nil {
		return 0, fmt.Errorf("input: %w", err)
	}
	if err := out.Validate(); err != nil {
		return 0, fmt.Errorf("output: %w", err)
	}

	normalize, err := audio.NormalizerFor(in)
	if err != nil {
		return 0, err
	}
	chmap := audio.NewChannelMap(in.Channels, out.Channels)
	ring := audio.NewRing(4*convertChunk*out.Channels, out.Channels)
	conv, err := audio.NewConverter(engine, ring, in.SampleRate, out.SampleRate, out.Channels)
	if err != nil {
		return 0, err
	}
	wr, err := wav.NewWriter(w, out)
	if err != nil {
		return 0, err
	}

	fb := in.FrameBytes()
	raw := make([]byte, convertChunk*fb)
	normalized := make([]float32, convertChunk*in.Channels)
	mapped := make([]float32, convertChunk*out.Channels)
	converted := make([]float32, convertChunk*out.Channels)

	var inFrames, outFrames int64
	for {
		n, rerr := io.ReadFull(src, raw)
		n -= n % fb
		if n > 0 {
			k := normalize(normalized, raw[:n])
			m := chmap.Map(mapped, normalized[:k])
			ring.Write(mapped[:m])
			inFrames += int64(n / fb)

			due := (inFrames-convertLag)*int64(out.SampleRate)/int64(in.SampleRate) - outFrames
			for due > 0 {
				c := int(min(due, convertChunk))
				buf := converted[:c*out.Channels]
				if _, err := conv.ReadSamples(buf); err != nil {
					return int(outFrames), err
				}
				if err := wr.WriteSamples(buf); err != nil {
					return int(outFrames), err
				}
				outFrames += int64(c)
				due -= int64(c)
			}
		}

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return int(outFrames), fmt.Errorf("reading input: %w", rerr)
		}
	}

	if err := wr.Close(); err != nil {
		return int(outFrames), err
	}
	return int(outFrames), nil
}
