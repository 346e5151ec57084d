// SPDX-License-Identifier: EPL-2.0

//go:build cgo && !noaudio

package device

import (
	"fmt"
	"sync"

	"github.com/decred/slog"
	"github.com/gen2brain/malgo"

	"github.com/ik5/audpass/audio"
)

// emptyDeviceID asks miniaudio for the default device.
var emptyDeviceID malgo.DeviceID

type malgoBackend struct {
	log  slog.Logger
	opts malgoOpts

	// ctx backs the opened streams. Enumeration uses its own short lived
	// context so hot-plugged devices show up on the next lookup.
	mtx  sync.Mutex
	ctx  *malgo.AllocatedContext
	refs int
}

// NewMalgoBackend returns a Backend driving the system audio devices through
// miniaudio.
func NewMalgoBackend(log slog.Logger, opts ...MalgoOption) (Backend, error) {
	if log == nil {
		log = slog.Disabled
	}
	return &malgoBackend{log: log, opts: newMalgoOpts(opts)}, nil
}

func malgoType(role Role) (malgo.DeviceType, error) {
	switch role {
	case RoleCapture:
		return malgo.Capture, nil
	case RoleRender:
		return malgo.Playback, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrWrongRole, role)
	}
}

func (b *malgoBackend) initContext() (*malgo.AllocatedContext, error) {
	return malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		b.log.Tracef("miniaudio: %s", msg)
	})
}

func freeContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

func (b *malgoBackend) Endpoints(role Role) ([]Endpoint, error) {
	typ, err := malgoType(role)
	if err != nil {
		return nil, err
	}

	ctx, err := b.initContext()
	if err != nil {
		return nil, fmt.Errorf("unable to init audio context: %w", err)
	}
	defer freeContext(ctx)

	devices, err := ctx.Devices(typ)
	if err != nil {
		return nil, fmt.Errorf("unable to list %s devices: %w", role, err)
	}

	seen := make(map[string]struct{}, len(devices))
	eps := make([]Endpoint, 0, len(devices))
	for _, dev := range devices {
		full, err := ctx.DeviceInfo(typ, dev.ID, malgo.Shared)
		if err != nil {
			b.log.Warnf("Unable to query %s device %q: %v", role, dev.Name(), err)
			full = dev
		}

		id := string(append([]byte(nil), full.ID[:]...))
		if _, ok := seen[id]; ok {
			b.log.Debugf("Skipping duplicate %s device %q", role, full.Name())
			continue
		}
		seen[id] = struct{}{}

		ep := Endpoint{
			ID:        id,
			Name:      full.Name(),
			Role:      role,
			Active:    true,
			IsDefault: full.IsDefault == 1,
		}
		if len(full.Formats) > 0 {
			ep.Format = fromMalgoFormat(full.Formats[0].Format,
				int(full.Formats[0].SampleRate), int(full.Formats[0].Channels))
		}
		eps = append(eps, ep)
	}

	return eps, nil
}

// acquire returns the shared stream context, creating it on first use.
func (b *malgoBackend) acquire() (*malgo.AllocatedContext, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.ctx == nil {
		ctx, err := b.initContext()
		if err != nil {
			return nil, fmt.Errorf("unable to init audio context: %w", err)
		}
		b.ctx = ctx
	}
	b.refs++
	return b.ctx, nil
}

func (b *malgoBackend) release() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.refs--
	if b.refs <= 0 && b.ctx != nil {
		freeContext(b.ctx)
		b.ctx = nil
		b.refs = 0
	}
}

func (b *malgoBackend) OpenCapture(ep Endpoint, cb Callbacks) (Stream, error) {
	return b.open(ep, RoleCapture, cb)
}

func (b *malgoBackend) OpenRender(ep Endpoint, cb Callbacks) (Stream, error) {
	return b.open(ep, RoleRender, cb)
}

func (b *malgoBackend) open(ep Endpoint, role Role, cb Callbacks) (Stream, error) {
	if ep.Role != role {
		return nil, fmt.Errorf("%w: %q is %s, want %s", ErrWrongRole, ep.Name, ep.Role, role)
	}
	typ, err := malgoType(role)
	if err != nil {
		return nil, err
	}
	format, err := toMalgoFormat(ep.Format)
	if err != nil {
		return nil, err
	}

	ctx, err := b.acquire()
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(typ)
	cfg.PeriodSizeInMilliseconds = uint32(b.opts.period.Milliseconds())
	cfg.SampleRate = uint32(max(ep.Format.SampleRate, 0))
	cfg.Alsa.NoMMap = 1

	var id malgo.DeviceID
	copy(id[:], ep.ID)
	sub := &cfg.Capture
	if role == RoleRender {
		sub = &cfg.Playback
	}
	if id != emptyDeviceID {
		sub.DeviceID = id.Pointer()
	}
	sub.Format = format
	sub.Channels = uint32(max(ep.Format.Channels, 0))

	s := &malgoStream{b: b, role: role, name: ep.Name}
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, in []byte, _ uint32) {
			if role == RoleCapture {
				cb.Data(in)
				return
			}
			cb.Data(out)
		},
		Stop: func() {
			b.log.Debugf("Device %q (%s) stopped", ep.Name, role)
			if cb.Stop != nil {
				cb.Stop()
			}
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		b.release()
		return nil, fmt.Errorf("unable to open %s device %q: %w", role, ep.Name, err)
	}
	s.dev = dev

	if role == RoleCapture {
		s.format = fromMalgoFormat(dev.CaptureFormat(), int(dev.SampleRate()), int(dev.CaptureChannels()))
	} else {
		s.format = fromMalgoFormat(dev.PlaybackFormat(), int(dev.SampleRate()), int(dev.PlaybackChannels()))
	}
	b.log.Debugf("Opened %s device %q as %s %dch %s", role, ep.Name,
		s.format, s.format.Channels, s.format.Encoding)

	return s, nil
}

// Close frees the stream context. Streams must be closed first.
func (b *malgoBackend) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.refs > 0 {
		b.log.Warnf("Closing audio backend with %d open streams", b.refs)
	}
	if b.ctx != nil {
		freeContext(b.ctx)
		b.ctx = nil
		b.refs = 0
	}
	return nil
}

type malgoStream struct {
	b      *malgoBackend
	role   Role
	name   string
	format audio.SampleFormat

	mtx    sync.Mutex
	dev    *malgo.Device
	closed bool
}

func (s *malgoStream) Format() audio.SampleFormat { return s.format }

func (s *malgoStream) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("unable to start %s device %q: %w", s.role, s.name, err)
	}
	return nil
}

func (s *malgoStream) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if !s.dev.IsStarted() {
		return nil
	}
	if err := s.dev.Stop(); err != nil {
		return fmt.Errorf("unable to stop %s device %q: %w", s.role, s.name, err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.dev.Uninit()
	s.b.release()
	return nil
}

func fromMalgoFormat(f malgo.FormatType, rate, channels int) audio.SampleFormat {
	sf := audio.SampleFormat{SampleRate: rate, Channels: channels}
	switch f {
	case malgo.FormatU8, malgo.FormatS16, malgo.FormatS24, malgo.FormatS32:
		sf.Encoding = audio.EncodingPCM
		sf.BitsPerSample = malgo.SampleSizeInBytes(f) * 8
	case malgo.FormatF32:
		sf.Encoding = audio.EncodingFloat
		sf.BitsPerSample = 32
	}
	return sf
}

// toMalgoFormat maps a requested format to a miniaudio one. A zero format
// selects the device's native format.
func toMalgoFormat(f audio.SampleFormat) (malgo.FormatType, error) {
	if f.BitsPerSample == 0 && f.Encoding == 0 {
		return malgo.FormatUnknown, nil
	}

	v, err := f.Variant()
	if err != nil {
		return malgo.FormatUnknown, err
	}
	switch v {
	case audio.VariantPCM8:
		return malgo.FormatU8, nil
	case audio.VariantPCM16:
		return malgo.FormatS16, nil
	case audio.VariantPCM24:
		return malgo.FormatS24, nil
	case audio.VariantPCM32:
		return malgo.FormatS32, nil
	case audio.VariantFloat32:
		return malgo.FormatF32, nil
	}
	return malgo.FormatUnknown, fmt.Errorf("%w: %s on audio devices", audio.ErrUnsupportedFormat, v)
}
