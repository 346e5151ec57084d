// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"fmt"

	"github.com/ik5/audpass/audio"
)

// chunkFrames bounds the scratch buffers used by the audio callbacks.
// Callbacks larger than that are processed in several passes.
const chunkFrames = 2048

// pipeline is the per-session conversion chain. capture runs on the capture
// callback only and render on the render callback only; the ring is the
// single point where they meet.
type pipeline struct {
	in, out audio.SampleFormat

	// capture side
	normalize audio.NormalizeFunc
	chmap     *audio.ChannelMap
	captured  []float32
	mapped    []float32

	ring *audio.Ring

	// render side
	conv     audio.Converter
	quantize audio.QuantizeFunc
	rendered []float32
}

func newPipeline(in, out audio.SampleFormat, cfg Config) (*pipeline, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("capture format: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("render format: %w", err)
	}

	normalize, err := audio.NormalizerFor(in)
	if err != nil {
		return nil, err
	}
	quantize, err := audio.QuantizerFor(out)
	if err != nil {
		return nil, err
	}

	// The ring carries capture-rate frames already mapped to the render
	// channel count.
	perSecond := in.SampleRate * out.Channels
	capacity := int(cfg.BufferDuration.Seconds() * float64(perSecond))
	ring := audio.NewRing(capacity, out.Channels)

	conv, err := audio.NewConverterQuality(cfg.Engine, ring, in.SampleRate,
		out.SampleRate, out.Channels, cfg.Quality)
	if err != nil {
		return nil, err
	}
	target := int(cfg.Latency.Seconds() * float64(perSecond))
	conv.SetTargetFill(target - target%out.Channels)

	return &pipeline{
		in:        in,
		out:       out,
		normalize: normalize,
		chmap:     audio.NewChannelMap(in.Channels, out.Channels),
		captured:  make([]float32, chunkFrames*in.Channels),
		mapped:    make([]float32, chunkFrames*out.Channels),
		ring:      ring,
		conv:      conv,
		quantize:  quantize,
		rendered:  make([]float32, chunkFrames*out.Channels),
	}, nil
}

// capture normalizes raw capture bytes and queues them for render. Trailing
// bytes that do not form a whole frame are dropped.
func (p *pipeline) capture(b []byte) {
	frameBytes := p.in.FrameBytes()
	for len(b) >= frameBytes {
		frames := min(len(b)/frameBytes, chunkFrames)
		n := p.normalize(p.captured[:frames*p.in.Channels], b)
		m := p.chmap.Map(p.mapped, p.captured[:n])
		p.ring.Write(p.mapped[:m])
		b = b[frames*frameBytes:]
	}
}

// render fills b with converted audio. It always writes every byte of b.
func (p *pipeline) render(b []byte) {
	frameBytes := p.out.FrameBytes()
	for len(b) >= frameBytes {
		frames := min(len(b)/frameBytes, chunkFrames)
		dst := p.rendered[:frames*p.out.Channels]
		if _, err := p.conv.ReadSamples(dst); err != nil {
			clear(dst)
		}
		p.quantize(b, dst)
		b = b[frames*frameBytes:]
	}
	silence(p.out, b)
}

// silence fills b with the render format's zero level.
func silence(f audio.SampleFormat, b []byte) {
	if f.Encoding == audio.EncodingPCM && f.BitsPerSample == 8 {
		for i := range b {
			b[i] = 0x80
		}
		return
	}
	clear(b)
}
