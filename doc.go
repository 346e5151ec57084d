// SPDX-License-Identifier: EPL-2.0

// Package audpass routes live audio from an input device to an output
// device, converting sample format, channel layout and sample rate on the
// way, and keeps doing so across device loss and transient failures.
//
// The work is split over a few packages:
//   - audio: sample formats, normalization, the capture/render ring and the
//     rate converters (cubic and soxr)
//   - device: endpoint enumeration and lookup, plus the miniaudio backend
//   - device/filedev: a backend over audio files
//   - passthrough: the session and the supervisor retry loop
//   - formats/...: WAV, MP3, Ogg Vorbis and AIFF decoders, and a WAV writer
//
// This package ties them together for the command line tools.
//
// # Live passthrough
//
//	backend, err := device.NewMalgoBackend(log)
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
//
//	sup := passthrough.NewSupervisor(backend, "USB", "Speakers", passthrough.DefaultConfig())
//	return sup.Run(ctx)
//
// # Offline conversion
//
// Convert pushes a decoded file through the same chain and writes a WAV:
//
//	src, err := audpass.NewRegistry().Open("in.mp3")
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	out, _ := os.Create("out.wav")
//	defer out.Close()
//	_, err = audpass.Convert(src, out, audio.VariantPCM16.Format(48000, 2), audio.EngineSoxr)
package audpass
