package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned for a render whose result arrived after a newer
// request for the same session started.
var ErrSuperseded = errors.New("render superseded by a newer request")

// Session sequences render requests for one interactive caller, such as the
// terminal viewer reacting to zoom keys. Each request gets the next sequence
// number and cancels the in-flight request; a result is only delivered if no
// newer request started while it was being computed. This keeps a slow
// external tool from overwriting the output of a later zoom level.
type Session struct {
	runner *Runner

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSession creates a session on top of a runner.
func NewSession(r *Runner) *Session {
	return &Session{runner: r}
}

// Render executes a sequenced render. Starting it cancels any in-flight
// render of this session. Returns ErrSuperseded when a newer request started
// before this one finished; callers drop those results.
func (s *Session) Render(ctx context.Context, opts Options) (*Result, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	res, err := s.runner.Execute(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		cancel()
		return nil, ErrSuperseded
	}
	s.cancel = nil
	cancel()

	if err != nil {
		return nil, err
	}
	res.Seq = seq
	return res, nil
}

// Seq returns the sequence number of the most recent request.
func (s *Session) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Cancel aborts any in-flight render without starting a new one.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
