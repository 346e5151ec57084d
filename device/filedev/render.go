// SPDX-License-Identifier: EPL-2.0

package filedev

import (
	"errors"
	"os"
	"time"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/formats/wav"
)

// renderStream pulls frames from the data callback on its own clock and
// appends them to a WAV file.
type renderStream struct {
	runner
	clock

	f   *os.File
	w   *wav.Writer
	cb  device.Callbacks
	err error // first write error, reported by Close
}

func newRenderStream(f *os.File, format audio.SampleFormat, cb device.Callbacks) (*renderStream, error) {
	w, err := wav.NewWriter(f, format)
	if err != nil {
		return nil, err
	}
	return &renderStream{f: f, w: w, cb: cb}, nil
}

func (s *renderStream) Format() audio.SampleFormat { return s.w.Format() }

func (s *renderStream) Start() error { return s.runner.start(s.loop) }

func (s *renderStream) Stop() error {
	if s.runner.stop() && s.cb.Stop != nil {
		s.cb.Stop()
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (s *renderStream) Close() error {
	s.Stop()
	if !s.markClosed() {
		return nil
	}
	return errors.Join(s.err, s.w.Close(), s.f.Close())
}

func (s *renderStream) loop(quit <-chan struct{}) {
	fb := s.w.Format().FrameBytes()
	buf := make([]byte, maxChunkFrames*fb)

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
			n := min(due, maxChunkFrames)
			p := buf[:n*fb]
			s.cb.Data(p)
			if _, err := s.w.Write(p); err != nil {
				if s.err == nil {
					s.err = err
				}
				s.ended()
				return
			}
			s.clock.done += n
			due -= n
		}
	}
}
