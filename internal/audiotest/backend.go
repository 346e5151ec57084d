// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides a scriptable device backend and signal
// generators for tests.
package audiotest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
)

var errBackendClosed = errors.New("backend closed")

// Backend is an in-memory device.Backend. Streams never run on their own:
// tests drive capture with Stream.Deliver and render with Stream.Pull.
type Backend struct {
	// Opened receives every stream right after it is opened.
	Opened chan *Stream

	mtx          sync.Mutex
	endpoints    map[device.Role][]device.Endpoint
	enumErr      error
	openErr      map[device.Role]error
	startErr     map[device.Role]error
	onEnumerate  func(n int)
	enumerations int
	streams      []*Stream
	closed       bool
}

func NewBackend() *Backend {
	return &Backend{
		Opened:    make(chan *Stream, 32),
		endpoints: make(map[device.Role][]device.Endpoint),
		openErr:   make(map[device.Role]error),
		startErr:  make(map[device.Role]error),
	}
}

// SetEndpoints replaces the endpoints listed for role.
func (b *Backend) SetEndpoints(role device.Role, eps ...device.Endpoint) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for i := range eps {
		eps[i].Role = role
	}
	b.endpoints[role] = eps
}

// SetEnumErr makes every enumeration fail with err until reset with nil.
func (b *Backend) SetEnumErr(err error) {
	b.mtx.Lock()
	b.enumErr = err
	b.mtx.Unlock()
}

// FailOpen makes opening a stream of role fail with err until reset with
// nil.
func (b *Backend) FailOpen(role device.Role, err error) {
	b.mtx.Lock()
	b.openErr[role] = err
	b.mtx.Unlock()
}

// FailStart makes streams of role opened from now on fail to start with
// err.
func (b *Backend) FailStart(role device.Role, err error) {
	b.mtx.Lock()
	b.startErr[role] = err
	b.mtx.Unlock()
}

// OnEnumerate installs a hook called with the running enumeration count
// before every enumeration.
func (b *Backend) OnEnumerate(fn func(n int)) {
	b.mtx.Lock()
	b.onEnumerate = fn
	b.mtx.Unlock()
}

// Enumerations is the number of Endpoints calls so far.
func (b *Backend) Enumerations() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.enumerations
}

// Streams lists every stream opened so far, in order.
func (b *Backend) Streams() []*Stream {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]*Stream(nil), b.streams...)
}

func (b *Backend) Endpoints(role device.Role) ([]device.Endpoint, error) {
	b.mtx.Lock()
	b.enumerations++
	n, fn := b.enumerations, b.onEnumerate
	b.mtx.Unlock()

	if fn != nil {
		fn(n)
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.enumErr != nil {
		return nil, b.enumErr
	}
	return append([]device.Endpoint(nil), b.endpoints[role]...), nil
}

func (b *Backend) OpenCapture(ep device.Endpoint, cb device.Callbacks) (device.Stream, error) {
	return b.open(device.RoleCapture, ep, cb)
}

func (b *Backend) OpenRender(ep device.Endpoint, cb device.Callbacks) (device.Stream, error) {
	return b.open(device.RoleRender, ep, cb)
}

func (b *Backend) open(role device.Role, ep device.Endpoint, cb device.Callbacks) (device.Stream, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return nil, errBackendClosed
	}
	if err := b.openErr[role]; err != nil {
		return nil, err
	}
	if ep.Role != role {
		return nil, fmt.Errorf("%w: %s", device.ErrWrongRole, ep.Name)
	}

	s := &Stream{
		Role:     role,
		Endpoint: ep,
		Starts:   make(chan struct{}, 32),
		Stops:    make(chan struct{}, 32),
		Closed:   make(chan struct{}),
		format:   ep.Format,
		cb:       cb,
		startErr: b.startErr[role],
	}
	b.streams = append(b.streams, s)
	select {
	case b.Opened <- s:
	default:
	}
	return s, nil
}

func (b *Backend) Close() error {
	b.mtx.Lock()
	b.closed = true
	b.mtx.Unlock()
	return nil
}

// Stream is a stream opened on Backend.
type Stream struct {
	Role     device.Role
	Endpoint device.Endpoint

	// Starts and Stops receive one value per Start and per stop
	// notification. Closed is closed by Close.
	Starts chan struct{}
	Stops  chan struct{}
	Closed chan struct{}

	format audio.SampleFormat
	cb     device.Callbacks

	mtx      sync.Mutex
	started  bool
	closed   bool
	startErr error
	starts   int
}

func (s *Stream) Format() audio.SampleFormat { return s.format }

// FailStart makes the following Start calls fail with err.
func (s *Stream) FailStart(err error) {
	s.mtx.Lock()
	s.startErr = err
	s.mtx.Unlock()
}

func (s *Stream) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return device.ErrStreamClosed
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	s.starts++
	select {
	case s.Starts <- struct{}{}:
	default:
	}
	return nil
}

// Stop stops the stream and notifies the stop callback, as real devices do
// for requested stops too.
func (s *Stream) Stop() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return device.ErrStreamClosed
	}
	was := s.started
	s.started = false
	s.mtx.Unlock()

	if was {
		s.notifyStop()
	}
	return nil
}

// SpuriousStop stops the stream as if the device had stopped by itself.
func (s *Stream) SpuriousStop() {
	s.mtx.Lock()
	was := s.started
	s.started = false
	s.mtx.Unlock()

	if was {
		s.notifyStop()
	}
}

func (s *Stream) notifyStop() {
	if s.cb.Stop != nil {
		s.cb.Stop()
	}
	select {
	case s.Stops <- struct{}{}:
	default:
	}
}

func (s *Stream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.closed {
		s.closed = true
		s.started = false
		close(s.Closed)
	}
	return nil
}

// Running reports whether the stream is started and not closed.
func (s *Stream) Running() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.started && !s.closed
}

// StartCount is the number of successful Start calls.
func (s *Stream) StartCount() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.starts
}

// IsClosed reports whether Close was called.
func (s *Stream) IsClosed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.closed
}

// Deliver hands captured bytes to the data callback. It returns false when
// the stream is not running.
func (s *Stream) Deliver(p []byte) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.started || s.closed {
		return false
	}
	s.cb.Data(p)
	return true
}

// Pull asks the data callback to fill frames render frames and returns the
// bytes. It returns nil when the stream is not running.
func (s *Stream) Pull(frames int) []byte {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.started || s.closed {
		return nil
	}
	p := make([]byte, frames*s.format.FrameBytes())
	s.cb.Data(p)
	return p
}
