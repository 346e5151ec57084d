// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/ik5/audpass/device"
)

// State is the Supervisor's position in its retry loop.
type State int32

const (
	StateResolvingDevices State = iota
	StateSessionRunning
	StateBackoff
	StateExited
)

func (s State) String() string {
	switch s {
	case StateResolvingDevices:
		return "resolving devices"
	case StateSessionRunning:
		return "session running"
	case StateBackoff:
		return "backoff"
	case StateExited:
		return "exited"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Supervisor keeps a passthrough session alive between two devices named
// by substrings of their display names. Devices are resolved from scratch
// before every session; a failed session is retried after a fixed backoff,
// forever, until the context is cancelled.
type Supervisor struct {
	backend device.Backend
	input   string
	output  string
	cfg     Config
	log     slog.Logger

	state    atomic.Int32
	sessions atomic.Uint64
	current  atomic.Pointer[Session]
}

func NewSupervisor(b device.Backend, input, output string, cfg Config) *Supervisor {
	cfg = cfg.withDefaults()
	return &Supervisor{
		backend: b,
		input:   input,
		output:  output,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

// State returns the current state.
func (s *Supervisor) State() State { return State(s.state.Load()) }

// Sessions is the number of sessions started so far.
func (s *Supervisor) Sessions() uint64 { return s.sessions.Load() }

// Session returns the running session, or nil.
func (s *Supervisor) Session() *Session { return s.current.Load() }

func (s *Supervisor) setState(st State) {
	if old := State(s.state.Swap(int32(st))); old != st {
		s.log.Debugf("State %s -> %s", old, st)
	}
}

func (s *Supervisor) status(format string, args ...interface{}) {
	fmt.Fprintf(s.cfg.Status, format+"\n", args...)
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// resolve finds both endpoints. A failed enumeration counts as a missing
// device.
func (s *Supervisor) resolve() (capture, render device.Endpoint, err error) {
	capture, err = device.Find(s.backend, s.input, device.RoleCapture)
	if err != nil {
		return capture, render, newError(KindDeviceNotFound, "find input", err)
	}
	render, err = device.Find(s.backend, s.output, device.RoleRender)
	if err != nil {
		return capture, render, newError(KindDeviceNotFound, "find output", err)
	}
	return capture, render, nil
}

// Run drives the supervisor until ctx is cancelled, which returns nil. An
// error that is not a classified *Error is returned as is.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(StateExited)

	waiting := false
	for {
		s.setState(StateResolvingDevices)
		if ctx.Err() != nil {
			return nil
		}

		capEP, renEP, err := s.resolve()
		if err != nil {
			if !errors.Is(err, device.ErrNotFound) {
				s.log.Warnf("Device enumeration failed: %v", err)
			} else {
				s.log.Debugf("%v", err)
			}
			if !waiting {
				s.status("Waiting for devices %q and %q...", s.input, s.output)
				waiting = true
			}
			if !sleep(ctx, s.cfg.PollInterval) {
				return nil
			}
			continue
		}
		waiting = false

		err = s.runSession(ctx, capEP, renEP)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			var perr *Error
			if !errors.As(err, &perr) {
				return err
			}
			s.status("Stopped: %v", err)
			s.log.Warnf("Session failed (%s), retrying in %s", perr.Kind, s.cfg.BackoffDelay)
		}

		s.setState(StateBackoff)
		if !sleep(ctx, s.cfg.BackoffDelay) {
			return nil
		}
	}
}

func (s *Supervisor) runSession(ctx context.Context, capEP, renEP device.Endpoint) error {
	s.setState(StateSessionRunning)

	// Every session gets its own exiting flag so a late callback from a
	// previous session cannot affect the next one.
	exiting := new(atomic.Bool)
	sess := NewSession(s.backend, capEP, renEP, exiting, s.cfg)
	s.sessions.Add(1)

	if err := sess.Start(); err != nil {
		return err
	}
	s.current.Store(sess)
	defer s.current.Store(nil)

	in, out := sess.Formats()
	s.status("Recording from %s (%s) to %s (%s)", capEP.Name, in, renEP.Name, out)

	return sess.Wait(ctx)
}
