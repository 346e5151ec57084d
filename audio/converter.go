// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strings"
)

// Engine selects the rate conversion algorithm.
type Engine int

const (
	// EngineCubic interpolates with a Catmull-Rom spline. Lowest latency.
	EngineCubic Engine = iota
	// EngineSoxr runs a polyphase FIR filter.
	EngineSoxr
)

func (e Engine) String() string {
	switch e {
	case EngineCubic:
		return "cubic"
	case EngineSoxr:
		return "soxr"
	default:
		return fmt.Sprintf("engine(%d)", int(e))
	}
}

// ParseEngine is the inverse of Engine.String.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "cubic", "":
		return EngineCubic, nil
	case "soxr":
		return EngineSoxr, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// Quality is the filter preset used by EngineSoxr.
type Quality int

const (
	QualityQuick Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityVeryHigh
)

var qualityNames = []string{
	QualityQuick:    "quick",
	QualityLow:      "low",
	QualityMedium:   "medium",
	QualityHigh:     "high",
	QualityVeryHigh: "veryhigh",
}

func (q Quality) String() string {
	if q < 0 || int(q) >= len(qualityNames) {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualityNames[q]
}

// ParseQuality is the inverse of Quality.String.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(s)
	for q, name := range qualityNames {
		if name == s {
			return Quality(q), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// Converter is a Source fed from a Ring. It is input-driven: every
// ReadSamples call consumes whatever the producer has deposited so far and
// always fills dst completely, holding the last frame when the ring runs dry.
type Converter interface {
	Source

	// Underruns is the number of reads that found the ring empty.
	Underruns() uint64

	// SetTargetFill enables drift correction towards the given ring fill,
	// in samples. Zero disables it.
	SetTargetFill(samples int)
}

// NewConverter builds a converter reading interleaved frames of the given
// channel count from buf and producing them at outRate.
func NewConverter(engine Engine, buf *Ring, inRate, outRate, channels int) (Converter, error) {
	return NewConverterQuality(engine, buf, inRate, outRate, channels, QualityHigh)
}

// NewConverterQuality is NewConverter with an explicit soxr quality preset.
// The preset is ignored by EngineCubic.
func NewConverterQuality(engine Engine, buf *Ring, inRate, outRate, channels int, q Quality) (Converter, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidSampleRate, inRate, outRate)
	}
	if channels <= 0 || channels != buf.Channels() {
		return nil, fmt.Errorf("%w: %d (ring carries %d)", ErrInvalidChannels, channels, buf.Channels())
	}

	switch engine {
	case EngineCubic:
		return NewCubicConverter(buf, inRate, outRate, channels), nil
	case EngineSoxr:
		return NewSoxrConverter(buf, inRate, outRate, channels, q)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
}

// driftStep nudges nominal by at most maxDrift depending on how far fill is
// from target.
func driftStep(nominal float64, fill, target int) float64 {
	if target <= 0 {
		return nominal
	}

	dev := float64(fill-target) / float64(target) * driftGain
	dev = min(max(dev, -maxDrift), maxDrift)
	return nominal * (1 + dev)
}

const (
	maxDrift  = 0.005
	driftGain = 0.01
)
