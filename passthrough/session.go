// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
)

// SessionState is the lifecycle state of a Session.
type SessionState int32

const (
	SessionStarting SessionState = iota
	SessionRunning
	SessionStopped
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionStarting:
		return "starting"
	case SessionRunning:
		return "running"
	case SessionStopped:
		return "stopped"
	case SessionFailed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// SessionStats are counters collected over the life of a session.
type SessionStats struct {
	// Dropped is the number of capture samples lost to a full ring.
	Dropped uint64
	// Underruns is the number of render reads that found the ring empty.
	Underruns uint64
	// Restarts is the number of playback restarts after spurious stops.
	Restarts uint64
}

// Session routes one capture stream into one render stream.
//
// A Session is single use: once stopped or failed it stays that way. The
// exiting flag is shared with the owner; setting it tells every callback that
// a stop is requested rather than spurious.
type Session struct {
	backend device.Backend
	capEP   device.Endpoint
	renEP   device.Endpoint
	cfg     Config
	log     slog.Logger

	exiting *atomic.Bool
	state   atomic.Int32
	pipe    atomic.Pointer[pipeline]

	restarts       atomic.Uint64
	restartPending atomic.Bool

	// ctlMtx guards the streams and serializes start, stop and restart.
	ctlMtx  sync.Mutex
	capture device.Stream
	render  device.Stream
	started bool

	timerMtx sync.Mutex
	timer    *time.Timer

	errMtx   sync.Mutex
	err      error
	done     chan struct{}
	doneOnce sync.Once
}

// NewSession prepares a session between two resolved endpoints. Nothing is
// opened until Start.
func NewSession(b device.Backend, capture, render device.Endpoint, exiting *atomic.Bool, cfg Config) *Session {
	cfg = cfg.withDefaults()
	if exiting == nil {
		exiting = new(atomic.Bool)
	}
	return &Session{
		backend: b,
		capEP:   capture,
		renEP:   render,
		cfg:     cfg,
		log:     cfg.SessionLog,
		exiting: exiting,
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// Done is closed once the session stopped or failed and released its
// streams.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the failure that ended the session, if any.
func (s *Session) Err() error {
	s.errMtx.Lock()
	defer s.errMtx.Unlock()
	return s.err
}

// Formats returns the formats the capture and render streams were opened
// with. They are zero before a successful Start.
func (s *Session) Formats() (capture, render audio.SampleFormat) {
	if p := s.pipe.Load(); p != nil {
		return p.in, p.out
	}
	return
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats {
	st := SessionStats{Restarts: s.restarts.Load()}
	if p := s.pipe.Load(); p != nil {
		st.Dropped = p.ring.Dropped()
		st.Underruns = p.conv.Underruns()
	}
	return st
}

// Start opens both streams, builds the conversion chain from the formats
// they were opened with and starts playback, then capture. On failure
// everything acquired so far is released in reverse order and the session
// is failed.
func (s *Session) Start() error {
	s.ctlMtx.Lock()
	err := s.start()
	s.ctlMtx.Unlock()

	if err != nil {
		s.finish(err)
		return err
	}
	return nil
}

func (s *Session) start() error {
	if s.started || s.State() != SessionStarting {
		return newError(KindStreamOpen, "start", errors.New("session already used"))
	}
	s.started = true

	capture, err := s.backend.OpenCapture(s.capEP, device.Callbacks{
		Data: s.onCapture,
		Stop: s.onCaptureStop,
	})
	if err != nil {
		return openError("open capture "+strconv.Quote(s.capEP.Name), err)
	}

	render, err := s.backend.OpenRender(s.renEP, device.Callbacks{
		Data: s.onRender,
		Stop: s.onRenderStop,
	})
	if err != nil {
		s.release(capture, nil)
		return openError("open render "+strconv.Quote(s.renEP.Name), err)
	}

	pipe, err := newPipeline(capture.Format(), render.Format(), s.cfg)
	if err != nil {
		s.release(capture, render)
		return openError("build pipeline", err)
	}
	s.pipe.Store(pipe)

	if err := render.Start(); err != nil {
		s.release(capture, render)
		return newError(KindStreamOpen, "start render", err)
	}
	if err := capture.Start(); err != nil {
		s.release(capture, render)
		return newError(KindStreamOpen, "start capture", err)
	}

	s.capture, s.render = capture, render
	s.state.Store(int32(SessionRunning))
	s.log.Infof("Session running: %q %s %dch -> %q %s %dch (%s)",
		s.capEP.Name, pipe.in, pipe.in.Channels,
		s.renEP.Name, pipe.out, pipe.out.Channels, s.cfg.Engine)
	return nil
}

// release stops and closes a partially started session. Either stream may
// be nil.
func (s *Session) release(capture, render device.Stream) {
	s.exiting.Store(true)
	if render != nil {
		if err := render.Stop(); err != nil {
			s.log.Debugf("Unable to stop render: %v", err)
		}
	}
	if capture != nil {
		if err := capture.Stop(); err != nil {
			s.log.Debugf("Unable to stop capture: %v", err)
		}
	}
	if render != nil {
		if err := render.Close(); err != nil {
			s.log.Warnf("Unable to close render: %v", err)
		}
	}
	if capture != nil {
		if err := capture.Close(); err != nil {
			s.log.Warnf("Unable to close capture: %v", err)
		}
	}
}

// Stop ends the session: it marks the session as exiting, cancels a pending
// playback restart, stops render then capture and closes both. It is safe
// to call more than once and from any goroutine other than a stream
// callback.
func (s *Session) Stop() {
	s.teardown(nil)
}

func (s *Session) teardown(cause error) {
	s.exiting.Store(true)
	s.cancelRestart()

	// Held across release so a concurrent teardown returns only once the
	// streams are closed. Stream callbacks never take ctlMtx.
	s.ctlMtx.Lock()
	defer s.ctlMtx.Unlock()

	capture, render := s.capture, s.render
	s.capture, s.render = nil, nil
	s.started = true
	if capture != nil || render != nil {
		s.release(capture, render)
	}
	s.finish(cause)
}

// finish records the outcome and closes Done. The first outcome wins.
func (s *Session) finish(cause error) {
	s.doneOnce.Do(func() {
		s.errMtx.Lock()
		s.err = cause
		s.errMtx.Unlock()

		if cause != nil {
			s.state.Store(int32(SessionFailed))
			s.log.Errorf("Session failed: %v", cause)
		} else {
			s.state.Store(int32(SessionStopped))
		}

		st := s.Stats()
		s.log.Infof("Session ended: %d dropped samples, %d underruns, %d playback restarts",
			st.Dropped, st.Underruns, st.Restarts)
		close(s.done)
	})
}

// Run starts the session and blocks until ctx is done or the session
// fails. Cancellation is a normal stop and returns nil.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Wait(ctx)
}

// Wait blocks on a started session until ctx is done, which stops it, or
// the session ends on its own.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case <-s.done:
		return s.Err()
	}
}

func (s *Session) onCapture(b []byte) {
	if p := s.pipe.Load(); p != nil {
		p.capture(b)
	}
}

func (s *Session) onRender(b []byte) {
	if p := s.pipe.Load(); p != nil {
		p.render(b)
		return
	}
	clear(b)
}

func (s *Session) onCaptureStop() {
	if s.exiting.Load() {
		return
	}
	s.log.Warnf("Capture device %q stopped", s.capEP.Name)
	go s.teardown(newError(KindStreamRuntime, "capture "+strconv.Quote(s.capEP.Name), ErrStreamStopped))
}

// onRenderStop schedules a playback restart when the render device stopped
// on its own. Capture keeps running and devices are not resolved again.
func (s *Session) onRenderStop() {
	if s.exiting.Load() {
		return
	}
	if !s.restartPending.CompareAndSwap(false, true) {
		return
	}
	s.log.Warnf("Render device %q stopped, restarting playback in %s",
		s.renEP.Name, s.cfg.RestartDelay)

	s.timerMtx.Lock()
	defer s.timerMtx.Unlock()
	if s.exiting.Load() {
		s.restartPending.Store(false)
		return
	}
	s.timer = time.AfterFunc(s.cfg.RestartDelay, s.restartRender)
}

func (s *Session) cancelRestart() {
	s.timerMtx.Lock()
	defer s.timerMtx.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) restartRender() {
	s.ctlMtx.Lock()
	defer s.ctlMtx.Unlock()

	s.restartPending.Store(false)
	if s.exiting.Load() || s.render == nil {
		return
	}
	if err := s.render.Start(); err != nil {
		go s.teardown(newError(KindStreamRuntime, "restart render "+strconv.Quote(s.renEP.Name), err))
		return
	}
	s.restarts.Add(1)
	s.log.Infof("Playback restarted on %q", s.renEP.Name)
}
