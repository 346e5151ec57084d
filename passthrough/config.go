// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"io"
	"time"

	"github.com/decred/slog"

	"github.com/ik5/audpass/audio"
)

// Config tunes a Supervisor and the Sessions it runs. Nothing in it is
// persisted.
type Config struct {
	// PollInterval is the wait between two device lookups while either
	// device is missing.
	PollInterval time.Duration

	// BackoffDelay is the wait after a failed session before devices are
	// resolved again.
	BackoffDelay time.Duration

	// RestartDelay is the wait before playback is restarted after the
	// render device stopped on its own.
	RestartDelay time.Duration

	// Latency is the ring fill the converter steers towards.
	Latency time.Duration

	// BufferDuration sizes the ring between capture and render.
	BufferDuration time.Duration

	Engine  audio.Engine
	Quality audio.Quality

	// Log receives supervisor events, SessionLog session events.
	Log        slog.Logger
	SessionLog slog.Logger

	// Status receives the human readable status lines.
	Status io.Writer
}

// DefaultConfig returns the configuration used by the command line tools.
func DefaultConfig() Config {
	return Config{
		PollInterval:   500 * time.Millisecond,
		BackoffDelay:   time.Second,
		RestartDelay:   time.Second,
		Latency:        200 * time.Millisecond,
		BufferDuration: 2 * time.Second,
		Engine:         audio.EngineCubic,
		Quality:        audio.QualityHigh,
		Log:            slog.Disabled,
		SessionLog:     slog.Disabled,
		Status:         io.Discard,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.BackoffDelay <= 0 {
		c.BackoffDelay = def.BackoffDelay
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = def.RestartDelay
	}
	if c.Latency <= 0 {
		c.Latency = def.Latency
	}
	if c.BufferDuration <= c.Latency {
		c.BufferDuration = max(def.BufferDuration, 2*c.Latency)
	}
	if c.Log == nil {
		c.Log = def.Log
	}
	if c.SessionLog == nil {
		c.SessionLog = def.SessionLog
	}
	if c.Status == nil {
		c.Status = def.Status
	}
	return c
}
