// SPDX-License-Identifier: EPL-2.0

package filedev

import (
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/formats/wav"
)

const (
	defaultPeriod = 10 * time.Millisecond

	// maxChunkFrames bounds a single data callback.
	maxChunkFrames = 4096
)

// Option configures a Backend.
type Option func(*Backend)

// WithSpeed plays files at speed times real time. Non-positive values are
// ignored.
func WithSpeed(speed float64) Option {
	return func(b *Backend) {
		if speed > 0 {
			b.speed = speed
		}
	}
}

// WithPeriod sets the clock tick of every stream.
func WithPeriod(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.period = d
		}
	}
}

// WithLogger sets the backend logger.
func WithLogger(log slog.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

type input struct {
	name   string
	path   string
	format audio.SampleFormat

	active   bool
	done     chan struct{}
	doneOnce sync.Once
}

func (in *input) finish() {
	in.doneOnce.Do(func() { close(in.done) })
}

type output struct {
	name   string
	path   string
	format audio.SampleFormat
}

// Backend is a device.Backend over audio files. Inputs are capture
// endpoints decoded in real time; outputs are render endpoints written as
// WAV files.
type Backend struct {
	reg    *audio.Registry
	log    slog.Logger
	speed  float64
	period time.Duration

	mtx     sync.Mutex
	inputs  []*input
	outputs []*output
}

// New returns an empty backend decoding inputs through reg.
func New(reg *audio.Registry, opts ...Option) *Backend {
	b := &Backend{
		reg:    reg,
		log:    slog.Disabled,
		speed:  1,
		period: defaultPeriod,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddInput registers the audio file at path as a capture endpoint called
// name. The file is inspected once here and decoded again for every stream
// opened on it.
func (b *Backend) AddInput(name, path string) error {
	src, err := b.reg.Open(path)
	if err != nil {
		return err
	}
	format := src.Format()
	src.Close()

	if err := format.Validate(); err != nil {
		return fmt.Errorf("input %s: %w", path, err)
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.inputs = append(b.inputs, &input{
		name:   name,
		path:   path,
		format: format,
		active: true,
		done:   make(chan struct{}),
	})
	b.log.Debugf("Added input %q (%s %dch) from %s", name, format, format.Channels, path)
	return nil
}

// AddOutput registers a render endpoint called name that writes a WAV file
// in format to path. The file is created when a stream is opened.
func (b *Backend) AddOutput(name, path string, format audio.SampleFormat) error {
	if err := wav.CheckFormat(format); err != nil {
		return fmt.Errorf("output %s: %w", path, err)
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.outputs = append(b.outputs, &output{name: name, path: path, format: format})
	return nil
}

// InputDone returns a channel closed once the named input reached its end.
func (b *Backend) InputDone(name string) (<-chan struct{}, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, in := range b.inputs {
		if in.name == name {
			return in.done, nil
		}
	}
	return nil, fmt.Errorf("%w: input %q", device.ErrNotFound, name)
}

func (b *Backend) Endpoints(role device.Role) ([]device.Endpoint, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	var eps []device.Endpoint
	switch role {
	case device.RoleCapture:
		for _, in := range b.inputs {
			eps = append(eps, device.Endpoint{
				ID: in.path, Name: in.name, Role: role,
				Format: in.format, Active: in.active,
			})
		}
	case device.RoleRender:
		for _, out := range b.outputs {
			eps = append(eps, device.Endpoint{
				ID: out.path, Name: out.name, Role: role,
				Format: out.format, Active: true,
			})
		}
	default:
		return nil, fmt.Errorf("%w: %s", device.ErrWrongRole, role)
	}
	return eps, nil
}

func (b *Backend) findInput(id string) (*input, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, in := range b.inputs {
		if in.path == id && in.active {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: input %q", device.ErrNotFound, id)
}

func (b *Backend) findOutput(id string) (*output, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, out := range b.outputs {
		if out.path == id {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: output %q", device.ErrNotFound, id)
}

// inputEnded marks in inactive so later lookups no longer find it.
func (b *Backend) inputEnded(in *input) {
	b.mtx.Lock()
	in.active = false
	b.mtx.Unlock()
	in.finish()
	b.log.Infof("Input %q reached its end", in.name)
}

func (b *Backend) OpenCapture(ep device.Endpoint, cb device.Callbacks) (device.Stream, error) {
	if ep.Role != device.RoleCapture {
		return nil, fmt.Errorf("%w: %q", device.ErrWrongRole, ep.Name)
	}
	in, err := b.findInput(ep.ID)
	if err != nil {
		return nil, err
	}
	src, err := b.reg.Open(in.path)
	if err != nil {
		return nil, err
	}

	s := &captureStream{b: b, in: in, src: src, cb: cb}
	s.clock = clock{speed: b.speed, period: b.period, rate: in.format.SampleRate}
	return s, nil
}

func (b *Backend) OpenRender(ep device.Endpoint, cb device.Callbacks) (device.Stream, error) {
	if ep.Role != device.RoleRender {
		return nil, fmt.Errorf("%w: %q", device.ErrWrongRole, ep.Name)
	}
	out, err := b.findOutput(ep.ID)
	if err != nil {
		return nil, err
	}

	format := out.format
	if ep.Format.BitsPerSample != 0 {
		format = ep.Format
	}

	f, err := os.Create(out.path)
	if err != nil {
		return nil, err
	}
	s, err := newRenderStream(f, format, cb)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.clock = clock{speed: b.speed, period: b.period, rate: format.SampleRate}
	return s, nil
}

// Close is a no-op; streams own their files.
func (b *Backend) Close() error { return nil }

// clock paces a stream against wall time scaled by speed.
type clock struct {
	speed  float64
	period time.Duration
	rate   int

	epoch time.Time
	done  int // frames handled since epoch
}

func (c *clock) reset() {
	c.epoch = time.Now()
	c.done = 0
}

// due is the number of frames owed now.
func (c *clock) due() int {
	elapsed := time.Since(c.epoch).Seconds() * c.speed
	return int(elapsed*float64(c.rate)) - c.done
}

// runner is the start/stop plumbing shared by both stream kinds.
type runner struct {
	mtx     sync.Mutex
	running bool
	closed  bool
	quit    chan struct{}
	exited  chan struct{}
}

// start launches loop unless already running.
func (r *runner) start(loop func(quit <-chan struct{})) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return device.ErrStreamClosed
	}
	if r.running {
		return nil
	}
	r.running = true
	r.quit = make(chan struct{})
	r.exited = make(chan struct{})
	go func(quit <-chan struct{}, exited chan struct{}) {
		defer close(exited)
		loop(quit)
	}(r.quit, r.exited)
	return nil
}

// stop ends the loop and waits for it. It reports whether the stream was
// running.
func (r *runner) stop() bool {
	r.mtx.Lock()
	if !r.running {
		r.mtx.Unlock()
		return false
	}
	r.running = false
	close(r.quit)
	exited := r.exited
	r.mtx.Unlock()

	<-exited
	return true
}

// ended is called by a loop that stops on its own. It reports whether the
// loop was still marked running.
func (r *runner) ended() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	was := r.running
	r.running = false
	return was
}

func (r *runner) markClosed() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	was := r.closed
	r.closed = true
	return !was
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
