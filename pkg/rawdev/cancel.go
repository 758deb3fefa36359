package rawdev

import(
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned when the caller's Generation moved on
// while a development was in flight. It is not a processing failure:
// don't retry it, don't log it as an error.
var ErrCancelled = errors.New("development cancelled")

// A Generation is a shared counter an interactive caller bumps when
// the work in flight stops being interesting (say, the user clicked a
// different image). Develop snapshots the counter on entry and polls
// it at stage boundaries; a mismatch aborts with ErrCancelled. No
// goroutine interruption needed.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation)Bump()           { g.n.Add(1) }
func (g *Generation)Current() uint64 { return g.n.Load() }

type genSnapshot struct {
	gen   *Generation
	start uint64
}

func snapshot(gen *Generation) genSnapshot {
	s := genSnapshot{gen: gen}
	if gen != nil {
		s.start = gen.Current()
	}
	return s
}

func (s genSnapshot)stale() error {
	if s.gen != nil && s.gen.Current() != s.start {
		return ErrCancelled
	}
	return nil
}
