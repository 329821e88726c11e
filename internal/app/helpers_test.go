package app

import (
	"github.com/dkeye/Huddle/internal/core"
)

type fakeSink struct {
	frames []core.Frame
	full   bool
	closed bool
}

func (s *fakeSink) TrySend(f core.Frame) error {
	if s.closed {
		return core.ErrClosed
	}
	if s.full {
		return core.ErrBackpressure
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSink) Close() { s.closed = true }
