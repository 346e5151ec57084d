// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
//
// # Supported Formats
//
//   - PCM 8, 16, 24 and 32-bit
//   - Mono and multi-channel
//   - Any sample rate
//
// # Decoding AIFF Files
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	n, err := src.Read(buf)
//
// The source is an audio.RawSource. Samples are converted from the
// big-endian on-disk layout to little-endian, and signed 8-bit samples to the
// unsigned 8-bit layout, so they normalize like any device stream.
package aiff
