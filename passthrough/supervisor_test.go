// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/internal/assert"
	"github.com/ik5/audpass/internal/audiotest"
)

type runningSupervisor struct {
	sup    *Supervisor
	status *syncBuffer
	cancel func()
	errc   chan error

	once sync.Once
	err  error
}

func startSupervisor(t *testing.T, b *audiotest.Backend) *runningSupervisor {
	t.Helper()

	cfg := testConfig(t)
	status := new(syncBuffer)
	cfg.Status = status
	sup := NewSupervisor(b, "USB", "Speakers", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	rs := &runningSupervisor{sup: sup, status: status, cancel: cancel, errc: make(chan error, 1)}
	go func() { rs.errc <- sup.Run(ctx) }()
	t.Cleanup(func() { rs.stop(t) })
	return rs
}

func (rs *runningSupervisor) stop(t testing.TB) {
	t.Helper()
	rs.once.Do(func() {
		rs.cancel()
		rs.err = assert.ChanWritten(t, rs.errc)
	})
	if rs.err != nil {
		t.Fatalf("Run = %v, want nil", rs.err)
	}
}

func TestSupervisor_WaitsForDevices(t *testing.T) {
	t.Parallel()

	const appearAfter = 6

	b := audiotest.NewBackend()
	var openedEarly atomic.Bool
	b.OnEnumerate(func(n int) {
		if len(b.Streams()) > 0 {
			openedEarly.Store(true)
		}
		if n == appearAfter {
			b.SetEndpoints(device.RoleCapture, testMic)
			b.SetEndpoints(device.RoleRender, testSpeakers)
		}
	})

	rs := startSupervisor(t, b)
	capture := assert.ChanWritten(t, b.Opened)
	if capture.Role != device.RoleCapture {
		t.Fatalf("first stream is %s", capture.Role)
	}

	if openedEarly.Load() {
		t.Fatal("stream opened before both devices were present")
	}
	if got := b.Enumerations(); got < appearAfter {
		t.Fatalf("opened after %d enumerations, want at least %d", got, appearAfter)
	}

	waitFor(t, "session", func() bool { return rs.sup.State() == StateSessionRunning && rs.sup.Session() != nil })

	status := rs.status.String()
	if n := strings.Count(status, "Waiting for devices"); n != 1 {
		t.Errorf("waiting status printed %d times:\n%s", n, status)
	}
	waitFor(t, "recording status", func() bool {
		return strings.Contains(rs.status.String(),
			"Recording from Microphone (USB) (44100/16) to Speakers (48000/32)")
	})

	rs.stop(t)
	if rs.sup.State() != StateExited {
		t.Errorf("state = %s, want exited", rs.sup.State())
	}
	if !capture.IsClosed() {
		t.Error("capture stream left open after exit")
	}
}

func TestSupervisor_OnlyCaptureMissing(t *testing.T) {
	t.Parallel()

	b := audiotest.NewBackend()
	b.SetEndpoints(device.RoleRender, testSpeakers)

	rs := startSupervisor(t, b)
	waitFor(t, "polling", func() bool { return b.Enumerations() >= 5 })
	if n := len(b.Streams()); n != 0 {
		t.Fatalf("opened %d streams while capture missing", n)
	}
	if rs.sup.Sessions() != 0 {
		t.Fatalf("started %d sessions", rs.sup.Sessions())
	}

	b.SetEndpoints(device.RoleCapture, testMic)
	assert.ChanWritten(t, b.Opened)
}

func TestSupervisor_EnumerationErrorKeepsPolling(t *testing.T) {
	t.Parallel()

	b := newTestBackend()
	b.SetEnumErr(errors.New("device manager unavailable"))
	b.OnEnumerate(func(n int) {
		if n == 3 {
			b.SetEnumErr(nil)
		}
	})

	startSupervisor(t, b)
	capture := assert.ChanWritten(t, b.Opened)
	assert.ChanWritten(t, capture.Starts)
}

func TestSupervisor_BackoffAfterFailure(t *testing.T) {
	t.Parallel()

	b := newTestBackend()
	rs := startSupervisor(t, b)

	capture := assert.ChanWritten(t, b.Opened)
	render := assert.ChanWritten(t, b.Opened)
	assert.ChanWritten(t, capture.Starts)

	// The capture device vanishes mid-session.
	capture.SpuriousStop()
	assert.ChanClosed(t, capture.Closed)
	assert.ChanClosed(t, render.Closed)

	// A fresh session is built on freshly resolved devices.
	capture2 := assert.ChanWritten(t, b.Opened)
	if capture2 == capture {
		t.Fatal("stream reused")
	}
	assert.ChanWritten(t, capture2.Starts)
	waitFor(t, "second session", func() bool { return rs.sup.Sessions() == 2 })

	if !strings.Contains(rs.status.String(), ErrStreamStopped.Error()) {
		t.Errorf("failure not reported in status:\n%s", rs.status.String())
	}
}

func TestSupervisor_OpenFailureRetries(t *testing.T) {
	t.Parallel()

	b := newTestBackend()
	b.FailOpen(device.RoleRender, errors.New("device busy"))

	rs := startSupervisor(t, b)

	// Every failed attempt releases its capture stream.
	for range 3 {
		capture := assert.ChanWritten(t, b.Opened)
		assert.ChanClosed(t, capture.Closed)
	}

	b.FailOpen(device.RoleRender, nil)
	waitFor(t, "session", func() bool {
		s := rs.sup.Session()
		return s != nil && s.State() == SessionRunning
	})
	if rs.sup.Sessions() < 4 {
		t.Errorf("sessions = %d, want at least 4", rs.sup.Sessions())
	}
}

func TestSupervisor_CancelWhileWaiting(t *testing.T) {
	t.Parallel()

	b := audiotest.NewBackend()
	rs := startSupervisor(t, b)
	waitFor(t, "polling", func() bool { return b.Enumerations() > 0 })

	rs.stop(t)
	if rs.sup.State() != StateExited {
		t.Errorf("state = %s, want exited", rs.sup.State())
	}
	if rs.sup.Sessions() != 0 {
		t.Errorf("sessions = %d, want 0", rs.sup.Sessions())
	}
}
