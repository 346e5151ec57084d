// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync/atomic"

	"github.com/ik5/audpass/utils"
)

const cubicStageFrames = 256

// CubicConverter resamples frames pulled from a Ring with Catmull-Rom
// interpolation. The four-frame history is carried across calls so the
// boundaries between capture bursts are invisible in the output.
type CubicConverter struct {
	ring     *Ring
	inRate   int
	outRate  int
	channels int
	ratio    float64 // inRate / outRate

	// hist holds four interleaved frames: t-1, t0, t+1, t+2.
	// Output is interpolated between t0 and t+1 at pos.
	hist   []float32
	pos    float64
	primed bool

	// stage holds frames bulk-read from the ring; stageOff is the next
	// unread sample.
	stage    []float32
	stageLen int
	stageOff int

	last []float32

	target    atomic.Int64
	underruns atomic.Uint64
}

func NewCubicConverter(buf *Ring, inRate, outRate, channels int) *CubicConverter {
	return &CubicConverter{
		ring:     buf,
		inRate:   inRate,
		outRate:  outRate,
		channels: channels,
		ratio:    float64(inRate) / float64(outRate),
		hist:     make([]float32, 4*channels),
		stage:    make([]float32, cubicStageFrames*channels),
		last:     make([]float32, channels),
	}
}

func (c *CubicConverter) SampleRate() int   { return c.outRate }
func (c *CubicConverter) Channels() int     { return c.channels }
func (c *CubicConverter) Close() error      { return nil }
func (c *CubicConverter) Underruns() uint64 { return c.underruns.Load() }

func (c *CubicConverter) SetTargetFill(samples int) { c.target.Store(int64(samples)) }

// nextFrame returns the next input frame, or nil when none is buffered.
func (c *CubicConverter) nextFrame() []float32 {
	if c.stageOff >= c.stageLen {
		c.stageLen = c.ring.Read(c.stage)
		c.stageOff = 0
		if c.stageLen == 0 {
			return nil
		}
	}

	f := c.stage[c.stageOff : c.stageOff+c.channels]
	c.stageOff += c.channels
	return f
}

// ReadSamples fills dst with frames at the output rate. It never blocks and
// never returns fewer samples than requested.
func (c *CubicConverter) ReadSamples(dst []float32) (int, error) {
	ch := c.channels
	if len(dst)%ch != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if !c.primed {
		f := c.nextFrame()
		if f == nil {
			clear(dst)
			return len(dst), nil
		}
		for i := range 4 {
			copy(c.hist[i*ch:(i+1)*ch], f)
		}
		c.primed = true
	}

	fill := c.ring.Len() + c.stageLen - c.stageOff
	step := driftStep(c.ratio, fill, int(c.target.Load()))

	f0 := c.hist[0*ch : 1*ch]
	f1 := c.hist[1*ch : 2*ch]
	f2 := c.hist[2*ch : 3*ch]
	f3 := c.hist[3*ch : 4*ch]

	frames := len(dst) / ch
	for i := range frames {
		if !c.advance() {
			c.underruns.Add(1)
			hold := c.last
			if i > 0 {
				hold = dst[(i-1)*ch : i*ch]
			}
			for j := i; j < frames; j++ {
				copy(dst[j*ch:(j+1)*ch], hold)
			}
			break
		}

		out := dst[i*ch : (i+1)*ch]
		utils.CubicInterpolateFrame(out, f0, f1, f2, f3, float32(c.pos))
		c.pos += step
	}

	copy(c.last, dst[len(dst)-ch:])
	return len(dst), nil
}

// advance shifts input frames into the history until pos falls inside the
// t0..t+1 interval. It reports false when the ring ran dry first.
func (c *CubicConverter) advance() bool {
	ch := c.channels
	for c.pos >= 1 {
		f := c.nextFrame()
		if f == nil {
			return false
		}
		copy(c.hist, c.hist[ch:])
		copy(c.hist[3*ch:], f)
		c.pos--
	}
	return true
}
