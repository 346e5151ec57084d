// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The decoder yields an audio.RawSource of little-endian float32 frames with
// the stream's channel count and sample rate:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	n, err := src.Read(buf)
package vorbis
