// SPDX-License-Identifier: EPL-2.0

package device

import (
	"strconv"

	"github.com/ik5/audpass/audio"
)

// Role tells capture endpoints from render endpoints.
type Role int

const (
	RoleCapture Role = iota + 1
	RoleRender
)

func (r Role) String() string {
	switch r {
	case RoleCapture:
		return "capture"
	case RoleRender:
		return "render"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// Endpoint is one audio device as reported by a Backend at enumeration time.
type Endpoint struct {
	ID   string
	Name string
	Role Role

	// Format is the native stream format. Zero fields mean "device
	// default" and are resolved when the stream is opened.
	Format audio.SampleFormat

	Active    bool
	IsDefault bool
}

// Callbacks are invoked from the backend's audio thread.
type Callbacks struct {
	// Data receives captured bytes on a capture stream. On a render stream
	// it must fill p completely.
	Data func(p []byte)

	// Stop is called whenever the stream stops, whether requested or not.
	Stop func()
}

// Stream is an opened device stream.
type Stream interface {
	// Format is the format the stream was actually opened with.
	Format() audio.SampleFormat
	Start() error
	Stop() error
	Close() error
}

// Enumerator lists the endpoints of a role.
type Enumerator interface {
	Endpoints(role Role) ([]Endpoint, error)
}

// Backend is a device subsystem able to enumerate and open streams.
//
// OpenRender opens the endpoint with ep.Format, so a caller may request a
// specific render format by setting it before the call.
type Backend interface {
	Enumerator
	OpenCapture(ep Endpoint, cb Callbacks) (Stream, error)
	OpenRender(ep Endpoint, cb Callbacks) (Stream, error)
	Close() error
}
