// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// Encoding is the on-the-wire representation of a sample.
type Encoding int

const (
	EncodingPCM Encoding = iota + 1
	EncodingFloat
)

func (e Encoding) String() string {
	switch e {
	case EncodingPCM:
		return "pcm"
	case EncodingFloat:
		return "float"
	default:
		return "unknown(" + strconv.Itoa(int(e)) + ")"
	}
}

// SampleFormat describes an interleaved little-endian sample stream.
type SampleFormat struct {
	SampleRate    int
	BitsPerSample int
	Encoding      Encoding
	Channels      int
}

// String renders the format as "<sampleRate>/<bitsPerSample>".
func (f SampleFormat) String() string {
	return strconv.Itoa(f.SampleRate) + "/" + strconv.Itoa(f.BitsPerSample)
}

// BytesPerSample is the size of one sample of one channel.
func (f SampleFormat) BytesPerSample() int { return f.BitsPerSample / 8 }

// FrameBytes is the size of one interleaved frame.
func (f SampleFormat) FrameBytes() int { return f.BytesPerSample() * f.Channels }

// Variant returns the conversion variant for the format or
// ErrUnsupportedFormat.
func (f SampleFormat) Variant() (Variant, error) {
	switch f.Encoding {
	case EncodingPCM:
		switch f.BitsPerSample {
		case 8:
			return VariantPCM8, nil
		case 16:
			return VariantPCM16, nil
		case 24:
			return VariantPCM24, nil
		case 32:
			return VariantPCM32, nil
		}
	case EncodingFloat:
		switch f.BitsPerSample {
		case 32:
			return VariantFloat32, nil
		case 64:
			return VariantFloat64, nil
		}
	}

	return 0, fmt.Errorf("%w: %s %d-bit", ErrUnsupportedFormat, f.Encoding, f.BitsPerSample)
}

// Validate checks that the format can flow through the pipeline.
func (f SampleFormat) Validate() error {
	if _, err := f.Variant(); err != nil {
		return err
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, f.Channels)
	}

	return nil
}

// Variant tags every supported (encoding, bits) pair.
type Variant int

const (
	VariantPCM8 Variant = iota
	VariantPCM16
	VariantPCM24
	VariantPCM32
	VariantFloat32
	VariantFloat64

	variantCount
)

var variantNames = [variantCount]string{
	VariantPCM8:    "pcm8",
	VariantPCM16:   "pcm16",
	VariantPCM24:   "pcm24",
	VariantPCM32:   "pcm32",
	VariantFloat32: "float32",
	VariantFloat64: "float64",
}

var variantWidths = [variantCount]int{
	VariantPCM8:    1,
	VariantPCM16:   2,
	VariantPCM24:   3,
	VariantPCM32:   4,
	VariantFloat32: 4,
	VariantFloat64: 8,
}

// Variants lists every supported variant.
func Variants() []Variant {
	out := make([]Variant, 0, variantCount)
	for v := range variantCount {
		out = append(out, v)
	}
	return out
}

func (v Variant) valid() bool { return v >= 0 && v < variantCount }

func (v Variant) String() string {
	if !v.valid() {
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
	return variantNames[v]
}

// ParseVariant maps a variant name such as "pcm16" or "float32" back to its
// Variant.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(s)
	for v, name := range variantNames {
		if name == s {
			return Variant(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Width is the sample size in bytes.
func (v Variant) Width() int {
	if !v.valid() {
		return 0
	}
	return variantWidths[v]
}

// Format returns a SampleFormat for the variant with the given rate and
// channel count.
func (v Variant) Format(sampleRate, channels int) SampleFormat {
	enc := EncodingPCM
	if v == VariantFloat32 || v == VariantFloat64 {
		enc = EncodingFloat
	}
	return SampleFormat{
		SampleRate:    sampleRate,
		BitsPerSample: v.Width() * 8,
		Encoding:      enc,
		Channels:      channels,
	}
}
