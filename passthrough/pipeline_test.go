// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"errors"
	"testing"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/internal/audiotest"
)

func testPipeline(t testing.TB, in, out audio.SampleFormat) *pipeline {
	t.Helper()
	p, err := newPipeline(in, out, DefaultConfig())
	if err != nil {
		t.Fatalf("newPipeline: %v", err)
	}
	return p
}

func TestNewPipeline_Invalid(t *testing.T) {
	t.Parallel()

	pcm12 := audio.SampleFormat{SampleRate: 48000, BitsPerSample: 12, Encoding: audio.EncodingPCM, Channels: 2}
	noRate := f32Stereo48
	noRate.SampleRate = 0

	tests := []struct {
		name    string
		in, out audio.SampleFormat
		want    error
	}{
		{"capture bits", pcm12, f32Stereo48, audio.ErrUnsupportedFormat},
		{"render bits", pcm16Mono44, pcm12, audio.ErrUnsupportedFormat},
		{"render rate", pcm16Mono44, noRate, audio.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newPipeline(tt.in, tt.out, DefaultConfig())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPipeline_CaptureWholeFrames(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, pcm16Mono44, f32Stereo48)

	// Three bytes hold one 16-bit frame and a stray byte.
	p.capture([]byte{0x00, 0x40, 0xFF})
	if got := p.ring.Len(); got != 2 {
		t.Fatalf("ring holds %d samples, want 2", got)
	}

	dst := make([]float32, 2)
	p.ring.Read(dst)
	if dst[0] != 0.5 || dst[1] != 0.5 {
		t.Errorf("mapped frame = %v, want [0.5 0.5]", dst)
	}
}

func TestPipeline_LargeCallbacks(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, pcm16Mono44, f32Stereo48)

	const frames = 3*chunkFrames + 17
	sig := audiotest.NewConstant(44100, 1, 0.25)
	p.capture(sig.NextBytes(pcm16Mono44, frames))
	if got := p.ring.Len(); got != frames*2 {
		t.Fatalf("ring holds %d samples, want %d", got, frames*2)
	}

	out := make([]byte, (2*chunkFrames+5)*f32Stereo48.FrameBytes())
	p.render(out)

	samples := make([]float32, len(out)/4)
	audio.Normalize(f32Stereo48, samples, out)
	tail := samples[len(samples)-2:]
	if tail[0] != 0.25 || tail[1] != 0.25 {
		t.Errorf("last frame = %v, want 0.25", tail)
	}
}

func TestPipeline_RenderSilence(t *testing.T) {
	t.Parallel()

	u8 := audio.SampleFormat{SampleRate: 8000, BitsPerSample: 8, Encoding: audio.EncodingPCM, Channels: 1}
	p := testPipeline(t, pcm16Mono44, u8)

	out := make([]byte, 64)
	for i := range out {
		out[i] = 0x11
	}
	p.render(out)
	for i, v := range out {
		if v != 0x80 {
			t.Fatalf("byte %d = %#x, want 0x80", i, v)
		}
	}

	// Bytes past the last whole frame are silenced too.
	p16 := testPipeline(t, pcm16Mono44, audio.SampleFormat{SampleRate: 8000, BitsPerSample: 16, Encoding: audio.EncodingPCM, Channels: 2})
	odd := []byte{1, 2, 3, 4, 5, 6, 7}
	p16.render(odd)
	for i, v := range odd {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
}

func TestPipeline_NoAllocs(t *testing.T) {
	p := testPipeline(t, pcm16Mono44, f32Stereo48)
	in := audiotest.NewSine(44100, 1, 440, 0.5).NextBytes(pcm16Mono44, 441)
	out := make([]byte, 480*f32Stereo48.FrameBytes())

	allocs := testing.AllocsPerRun(100, func() {
		p.capture(in)
		p.render(out)
	})
	if allocs != 0 {
		t.Errorf("capture+render allocated %v times per run", allocs)
	}
}

func BenchmarkPipeline(b *testing.B) {
	p := testPipeline(b, pcm16Mono44, f32Stereo48)
	in := audiotest.NewSine(44100, 1, 440, 0.5).NextBytes(pcm16Mono44, 441)
	out := make([]byte, 480*f32Stereo48.FrameBytes())

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		p.capture(in)
		p.render(out)
	}
}
