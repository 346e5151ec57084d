// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/internal/audiotest"
	"github.com/ik5/audpass/internal/testutils"
)

var (
	pcm16Mono44 = audio.SampleFormat{SampleRate: 44100, BitsPerSample: 16, Encoding: audio.EncodingPCM, Channels: 1}
	f32Stereo48 = audio.SampleFormat{SampleRate: 48000, BitsPerSample: 32, Encoding: audio.EncodingFloat, Channels: 2}
)

func testConfig(t testing.TB) Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.BackoffDelay = 5 * time.Millisecond
	cfg.RestartDelay = 20 * time.Millisecond
	cfg.Latency = 10 * time.Millisecond
	cfg.BufferDuration = time.Second
	cfg.Log = testutils.TestLoggerSys(t, "SUPV")
	cfg.SessionLog = testutils.TestLoggerSys(t, "SESS")
	return cfg
}

var (
	testMic      = device.Endpoint{ID: "mic", Name: "Microphone (USB)", Active: true, Format: pcm16Mono44}
	testSpeakers = device.Endpoint{ID: "spk", Name: "Speakers", Active: true, Format: f32Stereo48}
)

func newTestBackend() *audiotest.Backend {
	b := audiotest.NewBackend()
	b.SetEndpoints(device.RoleCapture, testMic)
	b.SetEndpoints(device.RoleRender, testSpeakers)
	return b
}

func endpoint(ep device.Endpoint, role device.Role) device.Endpoint {
	ep.Role = role
	return ep
}

// streams returns the capture and render streams of a started session.
func streams(t testing.TB, b *audiotest.Backend) (capture, render *audiotest.Stream) {
	t.Helper()
	all := b.Streams()
	if len(all) < 2 {
		t.Fatalf("got %d streams, want 2", len(all))
	}
	capture, render = all[len(all)-2], all[len(all)-1]
	if capture.Role != device.RoleCapture || render.Role != device.RoleRender {
		t.Fatalf("unexpected stream roles %s, %s", capture.Role, render.Role)
	}
	return capture, render
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t testing.TB, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.String()
}
