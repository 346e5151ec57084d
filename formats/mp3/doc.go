// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The decoder yields an audio.RawSource of 16-bit little-endian stereo frames
// at the file's sample rate. Mono files are duplicated to both channels by
// go-mp3.
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	n, err := src.Read(buf) // whole frames only
//
// MP3 writing is not supported.
package mp3
