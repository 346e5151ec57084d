// SPDX-License-Identifier: EPL-2.0

// audpass-file runs the audpass passthrough between two files: an audio
// file stands in for the capture device and a WAV file for the render
// device.
//
// Usage:
//
//	audpass-file [flags] <input.{wav,mp3,ogg,aiff}> <output.wav>
//	audpass-file --rate 8000 --channels 1 --format pcm16 in.mp3 out.wav
//	audpass-file --offline --engine soxr in.ogg out.wav
package main

import (
	"fmt"
	"os"

	"github.com/ik5/audpass/cmd/audpass-file/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
