// SPDX-License-Identifier: EPL-2.0

package filedev

import (
	"errors"
	"io"
	"time"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
)

// captureStream feeds a decoded file to the data callback in bursts of
// random size, averaging the file's sample rate over time.
type captureStream struct {
	runner
	clock

	b   *Backend
	in  *input
	src audio.RawSource
	cb  device.Callbacks
}

func (s *captureStream) Format() audio.SampleFormat { return s.src.Format() }

func (s *captureStream) Start() error { return s.runner.start(s.loop) }

func (s *captureStream) Stop() error {
	if s.runner.stop() && s.cb.Stop != nil {
		s.cb.Stop()
	}
	return nil
}

func (s *captureStream) Close() error {
	s.Stop()
	if !s.markClosed() {
		return nil
	}
	return s.src.Close()
}

func (s *captureStream) loop(quit <-chan struct{}) {
	fb := s.src.Format().FrameBytes()
	buf := make([]byte, maxChunkFrames*fb)
	rng := newRand()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	s.clock.reset()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}

		for due := s.due(); due > 0; {
			burst := min(due, 1+rng.IntN(min(due, maxChunkFrames)))
			n, err := io.ReadFull(s.src, buf[:burst*fb])
			n -= n % fb
			if n > 0 {
				s.cb.Data(buf[:n])
				s.clock.done += n / fb
				due -= n / fb
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					s.b.log.Errorf("Reading input %q: %v", s.in.name, err)
				}
				s.eof()
				return
			}
		}
	}
}

// eof behaves like a device that disappeared: the input goes inactive and
// the stop callback fires without anyone asking for it.
func (s *captureStream) eof() {
	s.b.inputEnded(s.in)
	if s.ended() && s.cb.Stop != nil {
		s.cb.Stop()
	}
}
