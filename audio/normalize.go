// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audpass/utils"
)

// NormalizeFunc converts raw little-endian samples in src into canonical
// samples in dst. It converts min(len(dst), len(src)/width) samples and
// returns that count.
type NormalizeFunc func(dst []float32, src []byte) int

// QuantizeFunc converts canonical samples in src into raw little-endian
// samples in dst. It converts min(len(src), len(dst)/width) samples and
// returns that count.
type QuantizeFunc func(dst []byte, src []float32) int

// normalizers is indexed by Variant; every variant must have an entry.
var normalizers = [variantCount]NormalizeFunc{
	VariantPCM8:    normalizePCM8,
	VariantPCM16:   normalizePCM16,
	VariantPCM24:   normalizePCM24,
	VariantPCM32:   normalizePCM32,
	VariantFloat32: normalizeFloat32,
	VariantFloat64: normalizeFloat64,
}

var quantizers = [variantCount]QuantizeFunc{
	VariantPCM8:    quantizePCM8,
	VariantPCM16:   quantizePCM16,
	VariantPCM24:   quantizePCM24,
	VariantPCM32:   quantizePCM32,
	VariantFloat32: quantizeFloat32,
	VariantFloat64: quantizeFloat64,
}

// NormalizerFor resolves the conversion function for f once, so it can be
// called from an audio callback without further dispatch.
func NormalizerFor(f SampleFormat) (NormalizeFunc, error) {
	v, err := f.Variant()
	if err != nil {
		return nil, err
	}
	return normalizers[v], nil
}

// QuantizerFor resolves the inverse of NormalizerFor.
func QuantizerFor(f SampleFormat) (QuantizeFunc, error) {
	v, err := f.Variant()
	if err != nil {
		return nil, err
	}
	return quantizers[v], nil
}

// Normalize converts raw samples of format f into canonical samples. Trailing
// bytes that do not form a whole sample are ignored. On an unsupported format
// dst is left untouched.
func Normalize(f SampleFormat, dst []float32, src []byte) (int, error) {
	fn, err := NormalizerFor(f)
	if err != nil {
		return 0, err
	}
	return fn(dst, src), nil
}

// Quantize converts canonical samples into raw samples of format f, clamping
// to [-1, 1].
func Quantize(f SampleFormat, dst []byte, src []float32) (int, error) {
	fn, err := QuantizerFor(f)
	if err != nil {
		return 0, err
	}
	return fn(dst, src), nil
}

// count is the number of whole samples that fit both the sample slice and
// the byte slice.
func count(samples, bytes, width int) int {
	return min(samples, bytes/width)
}

func normalizePCM8(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 1)
	for i := range n {
		dst[i] = float32(int(src[i])-128) / 128
	}
	return n
}

func normalizePCM16(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 2)
	for i := range n {
		v := int16(binary.LittleEndian.Uint16(src[2*i:]))
		dst[i] = float32(v) / 32768
	}
	return n
}

func normalizePCM24(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 3)
	for i := range n {
		b := src[3*i : 3*i+3]
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		// sign extend from bit 23
		v = v << 8 >> 8
		dst[i] = float32(v) / 8388608
	}
	return n
}

func normalizePCM32(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 4)
	for i := range n {
		v := int32(binary.LittleEndian.Uint32(src[4*i:]))
		dst[i] = utils.PCMToFloat(v, 32)
	}
	return n
}

func normalizeFloat32(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 4)
	for i := range n {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
	return n
}

func normalizeFloat64(dst []float32, src []byte) int {
	n := count(len(dst), len(src), 8)
	for i := range n {
		dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:])))
	}
	return n
}

func quantizePCM8(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 1)
	for i := range n {
		dst[i] = byte(utils.FloatToPCM(src[i], 8) + 128)
	}
	return n
}

func quantizePCM16(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 2)
	for i := range n {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(int16(utils.FloatToPCM(src[i], 16))))
	}
	return n
}

func quantizePCM24(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 3)
	for i := range n {
		v := utils.FloatToPCM(src[i], 24)
		dst[3*i] = byte(v)
		dst[3*i+1] = byte(v >> 8)
		dst[3*i+2] = byte(v >> 16)
	}
	return n
}

func quantizePCM32(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 4)
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], uint32(utils.FloatToPCM(src[i], 32)))
	}
	return n
}

func quantizeFloat32(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 4)
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(utils.Clamp(src[i])))
	}
	return n
}

func quantizeFloat64(dst []byte, src []float32) int {
	n := count(len(src), len(dst), 8)
	for i := range n {
		binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(float64(utils.Clamp(src[i]))))
	}
	return n
}
