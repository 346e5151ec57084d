// SPDX-License-Identifier: EPL-2.0

// audpass plays a capture device through a render device, converting the
// sample format, channel layout and rate on the fly.
//
// Usage:
//
//	audpass <input> <output>
//
// <input> and <output> are substrings of the device display names. Without
// them the active devices are listed. Press Enter (or Ctrl+C) to exit.
//
// Logs are written to <user cache dir>/audpass/logs/audpass.log.
package main

import (
	"fmt"
	"os"

	"github.com/ik5/audpass/cmd/audpass/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
