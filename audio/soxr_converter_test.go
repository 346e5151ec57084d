// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"
)

func TestSoxrConverter_Constant(t *testing.T) {
	t.Parallel()

	const inRate, outRate = 44100, 48000
	ring := NewRing(1<<14, 1)
	c, err := NewSoxrConverter(ring, inRate, outRate, 1, QualityMedium)
	if err != nil {
		t.Fatalf("NewSoxrConverter() error = %v", err)
	}

	in := constant(inRate/100, 1, 0.5)
	dst := make([]float32, outRate/100)
	var out []float32
	for range 200 {
		ring.Write(in)
		n, err := c.ReadSamples(dst)
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if n != len(dst) {
			t.Fatalf("ReadSamples() = %d, want %d", n, len(dst))
		}
		out = append(out, dst...)
	}

	tail := out[len(out)-outRate/2:]
	for i, v := range tail {
		if math.Abs(float64(v-0.5)) > 0.01 {
			t.Fatalf("tail[%d] = %v, want 0.5", i, v)
		}
	}
}

// TestSoxrConverter_StereoKeepsChannels feeds opposite constants to left
// and right; a filter that mixed the interleaved samples would cancel them.
func TestSoxrConverter_StereoKeepsChannels(t *testing.T) {
	t.Parallel()

	const inRate, outRate = 44100, 48000
	ring := NewRing(1<<15, 2)
	c, err := NewSoxrConverter(ring, inRate, outRate, 2, QualityMedium)
	if err != nil {
		t.Fatalf("NewSoxrConverter() error = %v", err)
	}

	in := make([]float32, 2*inRate/100)
	for i := 0; i < len(in); i += 2 {
		in[i], in[i+1] = 0.5, -0.5
	}
	dst := make([]float32, 2*outRate/100)
	for range 50 {
		ring.Write(in)
		if _, err := c.ReadSamples(dst); err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	for i := 0; i < len(dst); i += 2 {
		if math.Abs(float64(dst[i]-0.5)) > 0.01 || math.Abs(float64(dst[i+1]+0.5)) > 0.01 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, -0.5)", i/2, dst[i], dst[i+1])
		}
	}
}

func TestSoxrConverter_SilenceBeforeInput(t *testing.T) {
	t.Parallel()

	c, err := NewSoxrConverter(NewRing(1024, 2), 48000, 44100, 2, QualityQuick)
	if err != nil {
		t.Fatal(err)
	}

	dst := constant(32, 2, 3)
	if n, err := c.ReadSamples(dst); err != nil || n != len(dst) {
		t.Fatalf("ReadSamples() = %d, %v", n, err)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %v, want silence", i, v)
		}
	}
	if c.Underruns() != 0 {
		t.Errorf("Underruns() = %d, want 0", c.Underruns())
	}
}

func TestSoxrConverter_TrimsOverfullRing(t *testing.T) {
	t.Parallel()

	ring := NewRing(1<<15, 1)
	c, err := NewSoxrConverter(ring, 48000, 44100, 1, QualityLow)
	if err != nil {
		t.Fatal(err)
	}
	c.SetTargetFill(1000)

	ring.Write(constant(20000, 1, 0.1))
	c.ReadSamples(make([]float32, 16))

	if ring.Len() > 2000 {
		t.Errorf("ring holds %d samples after a read, want at most 2000", ring.Len())
	}
}

func TestSoxrConverter_PendingStaysPresized(t *testing.T) {
	t.Parallel()

	ring := NewRing(1<<15, 2)
	c, err := NewSoxrConverter(ring, 44100, 48000, 2, QualityMedium)
	if err != nil {
		t.Fatal(err)
	}

	want := cap(c.pending)
	in := constant(441, 2, 0.25)
	dst := make([]float32, 960)
	for range 100 {
		ring.Write(in)
		c.ReadSamples(dst)
	}
	if got := cap(c.pending); got != want {
		t.Errorf("cap(pending) = %d after steady reads, want %d", got, want)
	}
}
