// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the passthrough
// pipeline.
//
// # Formats
//
// A SampleFormat describes raw interleaved little-endian samples as a device
// or a decoded file delivers them. Every supported layout maps to a Variant:
//
//	pcm8     unsigned 8-bit
//	pcm16    signed 16-bit
//	pcm24    signed 24-bit packed in 3 bytes
//	pcm32    signed 32-bit
//	float32  IEEE 754 single
//	float64  IEEE 754 double
//
// Anything else is ErrUnsupportedFormat.
//
// # Normalization
//
// Normalize converts raw bytes into canonical float32 samples in [-1, 1] and
// Quantize converts them back, clamping and rounding to nearest. Both
// dispatch through fixed tables indexed by Variant. Audio callbacks resolve
// the function once with NormalizerFor or QuantizerFor:
//
//	norm, err := audio.NormalizerFor(captureFormat)
//	...
//	n := norm(scratch, raw)
//
// # Ring and conversion
//
// Ring is a lock-free single-producer/single-consumer FIFO. The capture
// callback writes canonical frames into it and the render callback pulls them
// through a Converter, which produces output at the render rate:
//
//	ring := audio.NewRing(2*48000*2, 2)
//	conv, err := audio.NewConverter(audio.EngineCubic, ring, 44100, 48000, 2)
//	...
//	conv.ReadSamples(out) // always fills out
//
// EngineCubic interpolates with a Catmull-Rom spline and adds no latency.
// EngineSoxr uses a polyphase FIR filter. Both hold the last frame when the
// ring runs dry and count the underrun.
//
// ChannelMap adapts the capture channel count to the render channel count
// before frames enter the ring.
//
// # Registry
//
// Registry maps file extensions to Decoders that produce RawSources, so
// decoded files enter the pipeline through the same normalizer as devices.
package audio
