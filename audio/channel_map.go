// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelMap converts interleaved frames between channel counts.
//
//   - equal counts copy through;
//   - to mono averages all input channels;
//   - from mono duplicates the single channel;
//   - otherwise output channel c averages every input channel k with
//     k%out == c, and output channels beyond the input count repeat
//     input channel c%in.
type ChannelMap struct {
	in, out int
}

func NewChannelMap(in, out int) *ChannelMap {
	return &ChannelMap{in: max(in, 1), out: max(out, 1)}
}

func (m *ChannelMap) InChannels() int  { return m.in }
func (m *ChannelMap) OutChannels() int { return m.out }

// OutLen is the number of output samples produced for n input samples.
func (m *ChannelMap) OutLen(n int) int { return n / m.in * m.out }

// Map converts as many whole frames as fit in dst and returns the number of
// samples written.
func (m *ChannelMap) Map(dst, src []float32) int {
	frames := min(len(src)/m.in, len(dst)/m.out)
	in, out := m.in, m.out

	switch {
	case in == out:
		return copy(dst[:frames*out], src[:frames*in])

	case out == 1:
		inv := 1 / float32(in)
		if in == 2 {
			for f := range frames {
				idx := f << 1
				dst[f] = (src[idx] + src[idx+1]) * 0.5
			}
			break
		}
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += src[base+c]
			}
			dst[f] = sum * inv
		}

	case in == 1:
		for f := range frames {
			v := src[f]
			base := f * out
			for c := range out {
				dst[base+c] = v
			}
		}

	case out > in:
		for f := range frames {
			sb, db := f*in, f*out
			for c := range out {
				dst[db+c] = src[sb+c%in]
			}
		}

	default:
		for f := range frames {
			sb, db := f*in, f*out
			for c := range out {
				sum, n := float32(0), 0
				for k := c; k < in; k += out {
					sum += src[sb+k]
					n++
				}
				dst[db+c] = sum / float32(n)
			}
		}
	}

	return frames * out
}
