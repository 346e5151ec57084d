// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"sync/atomic"

	resampling "github.com/tphakala/go-audio-resampling"
)

// SoxrConverter resamples frames pulled from a Ring through a polyphase FIR
// filter. It trades a few milliseconds of latency for a flat passband.
//
// Unlike CubicConverter it allocates on every pull: the filter returns a
// fresh slice per channel.
type SoxrConverter struct {
	ring     *Ring
	outRate  int
	channels int

	rs resampling.Resampler

	in      []float32
	planes  [][]float64 // per-channel scratch for the filter input
	pending []float32   // filtered output not yet handed out
	last    []float32
	started bool

	target    atomic.Int64
	underruns atomic.Uint64
}

func qualitySpec(q Quality) resampling.QualitySpec {
	switch q {
	case QualityQuick:
		return resampling.QualitySpec{Preset: resampling.QualityQuick}
	case QualityLow:
		return resampling.QualitySpec{Preset: resampling.QualityLow}
	case QualityMedium:
		return resampling.QualitySpec{Preset: resampling.QualityMedium}
	case QualityVeryHigh:
		return resampling.QualitySpec{Preset: resampling.QualityVeryHigh}
	default:
		return resampling.QualitySpec{Preset: resampling.QualityHigh}
	}
}

func NewSoxrConverter(buf *Ring, inRate, outRate, channels int, q Quality) (*SoxrConverter, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(inRate),
		OutputRate: float64(outRate),
		Channels:   channels,
		Quality:    qualitySpec(q),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	// One render period worth of input is plenty; larger pulls just leave
	// more in pending.
	inLen := 4096 - 4096%channels
	planes := make([][]float64, channels)
	for i := range planes {
		planes[i] = make([]float64, inLen/channels)
	}
	// Room for a few pulls at the output rate, so pending only grows when
	// the caller asks for more than that in one read.
	outLen := 4 * (inLen*outRate/inRate + channels)

	return &SoxrConverter{
		ring:     buf,
		outRate:  outRate,
		channels: channels,
		rs:       rs,
		in:       make([]float32, inLen),
		planes:   planes,
		pending:  make([]float32, 0, outLen),
		last:     make([]float32, channels),
	}, nil
}

func (s *SoxrConverter) SampleRate() int   { return s.outRate }
func (s *SoxrConverter) Channels() int     { return s.channels }
func (s *SoxrConverter) Close() error      { return nil }
func (s *SoxrConverter) Underruns() uint64 { return s.underruns.Load() }

// SetTargetFill trims the ring when it grows past twice the target. The
// filter ratio itself is fixed.
func (s *SoxrConverter) SetTargetFill(samples int) { s.target.Store(int64(samples)) }

func (s *SoxrConverter) pull() error {
	if t := int(s.target.Load()); t > 0 {
		if over := s.ring.Len() - 2*t; over > 0 {
			s.ring.Discard(over)
		}
	}

	ch := s.channels
	n := s.ring.Read(s.in)
	if n == 0 {
		return nil
	}
	frames := n / ch
	for c, plane := range s.planes {
		for f := range frames {
			plane[f] = float64(s.in[f*ch+c])
		}
		s.planes[c] = plane[:frames]
	}

	out, err := s.rs.ProcessMulti(s.planes)
	for c := range s.planes {
		s.planes[c] = s.planes[c][:cap(s.planes[c])]
	}
	if err != nil {
		return fmt.Errorf("resample: %w", err)
	}

	produced := len(out[0])
	for _, plane := range out[1:] {
		produced = min(produced, len(plane))
	}
	for f := range produced {
		for c := range ch {
			s.pending = append(s.pending, float32(out[c][f]))
		}
	}
	return nil
}

// ReadSamples fills dst completely. Output the filter has not produced yet is
// replaced by the last emitted frame, or silence before the first one.
func (s *SoxrConverter) ReadSamples(dst []float32) (int, error) {
	ch := s.channels
	if len(dst)%ch != 0 {
		return 0, ErrInvalidDstSize
	}

	for len(s.pending) < len(dst) {
		before := len(s.pending)
		if err := s.pull(); err != nil {
			return 0, err
		}
		if len(s.pending) == before && s.ring.Len() < ch {
			break
		}
	}

	n := copy(dst, s.pending)
	n -= n % ch
	rest := copy(s.pending, s.pending[n:])
	s.pending = s.pending[:rest]

	if n > 0 {
		s.started = true
		copy(s.last, dst[n-ch:n])
	}
	if n < len(dst) {
		if s.started {
			s.underruns.Add(1)
		}
		for j := n; j < len(dst); j += ch {
			copy(dst[j:j+ch], s.last)
		}
	}

	return len(dst), nil
}
