// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits x to the canonical [-1, 1] range.
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}
	return x
}

// pcmScale is 2^(bits-1), the magnitude of full scale for signed PCM.
func pcmScale(bits int) float64 {
	return float64(uint64(1) << (bits - 1))
}

// FloatToPCM quantizes a canonical sample to a signed integer of the given
// bit depth, rounding to nearest and clamping to the representable range.
func FloatToPCM(x float32, bits int) int32 {
	scale := pcmScale(bits)
	v := math.Round(float64(x) * scale)
	if v > scale-1 {
		v = scale - 1
	} else if v < -scale {
		v = -scale
	}
	return int32(v)
}

// PCMToFloat maps a signed integer sample of the given bit depth to the
// canonical range.
func PCMToFloat(v int32, bits int) float32 {
	return float32(float64(v) / pcmScale(bits))
}
