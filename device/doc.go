// SPDX-License-Identifier: EPL-2.0

// Package device enumerates audio endpoints and opens capture and render
// streams on them.
//
// Endpoints are listed fresh on every call; nothing is cached between
// lookups, so a device that was unplugged and plugged back in is found again
// by name. Find resolves an endpoint by a case-sensitive substring of its
// display name.
//
// NewMalgoBackend drives the system devices through miniaudio. It needs cgo;
// builds without cgo or with the noaudio tag get a stub that returns
// ErrNoAudioSupport. The filedev subpackage provides a Backend over audio
// files.
package device
