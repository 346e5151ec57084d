// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// PackInts writes integer PCM samples (as go-audio IntBuffers carry them) into
// little-endian bytes of the given bit depth. 8-bit samples are unsigned
// (0..255), wider depths are signed. It returns the number of bytes written.
func PackInts(dst []byte, src []int, bits int) (int, error) {
	width := bits / 8
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return 0, fmt.Errorf("%w: pcm %d-bit", ErrUnsupportedFormat, bits)
	}

	n := min(len(src), len(dst)/width)
	for i := range n {
		v := src[i]
		o := dst[i*width : i*width+width]
		for b := range width {
			o[b] = byte(v >> (8 * b))
		}
	}

	return n * width, nil
}

// UnpackInts is the inverse of PackInts. It returns the number of samples
// written to dst.
func UnpackInts(dst []int, src []byte, bits int) (int, error) {
	width := bits / 8
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return 0, fmt.Errorf("%w: pcm %d-bit", ErrUnsupportedFormat, bits)
	}

	n := min(len(dst), len(src)/width)
	shift := 64 - bits
	for i := range n {
		b := src[i*width : i*width+width]
		var v uint64
		for j := range width {
			v |= uint64(b[j]) << (8 * j)
		}
		if bits == 8 {
			dst[i] = int(v)
			continue
		}
		dst[i] = int(int64(v<<shift) >> shift)
	}

	return n, nil
}
