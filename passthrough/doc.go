// SPDX-License-Identifier: EPL-2.0

// Package passthrough routes live audio from a capture device to a render
// device, converting sample format, channel count and sample rate on the
// fly.
//
// # Session
//
// A Session owns one capture stream and one render stream. The capture
// callback normalizes device bytes to float32, maps channels and writes the
// result into a lock-free ring. The render callback pulls from the ring
// through a rate converter and quantizes to the render format. The render
// stream is always opened with its own native format; the chain adapts to
// whatever both streams were actually opened with.
//
// A render stream that stops on its own is restarted after
// Config.RestartDelay. A capture stream that stops on its own fails the
// session with KindStreamRuntime.
//
// # Supervisor
//
// A Supervisor resolves both devices, runs a Session, and on failure waits
// Config.BackoffDelay and starts over. While a device is missing it polls
// every Config.PollInterval. Cancelling the context passed to Run is the
// only way out.
package passthrough
