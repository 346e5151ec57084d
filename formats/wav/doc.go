// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files through github.com/go-audio/wav.
//
// # Supported Formats
//
//   - PCM 8-bit (unsigned), 16, 24 and 32-bit (signed)
//   - IEEE float 32-bit
//   - any channel count and sample rate
//
// # Decoding
//
// Decoder yields an audio.RawSource that hands out the data chunk as raw
// little-endian frames, ready for audio.Normalize:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	n, err := src.Read(buf)
//
// Non-seekable readers are buffered in memory first.
//
// # Encoding
//
// Writer encodes raw frames, or canonical samples through WriteSamples, in a
// fixed format. The destination must be an io.WriteSeeker so Close can patch
// the header sizes:
//
//	w, err := wav.NewWriter(file, audio.VariantPCM16.Format(48000, 2))
//	...
//	w.WriteSamples(samples)
//	w.Close()
package wav
