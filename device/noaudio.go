// SPDX-License-Identifier: EPL-2.0

//go:build !cgo || noaudio

package device

import "github.com/decred/slog"

// NewMalgoBackend is unavailable in cgo-less and noaudio builds.
func NewMalgoBackend(log slog.Logger, opts ...MalgoOption) (Backend, error) {
	_ = newMalgoOpts(opts)
	log.Warnf("Built without audio device support")
	return nil, ErrNoAudioSupport
}
