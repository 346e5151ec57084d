// SPDX-License-Identifier: EPL-2.0

// Package filedev is a device.Backend over audio files.
//
// Inputs are capture endpoints: any file the registry can decode, replayed
// at the file's own rate (scaled by WithSpeed) in bursts of irregular size,
// the way a real capture device hands over its periods. When an input is
// exhausted it turns inactive and its stream stops on its own, which a
// session treats exactly like an unplugged device.
//
// Outputs are render endpoints written as WAV files in a fixed format,
// clocked by their own ticker.
package filedev
