// Package engine orders concurrent fetch completions.
package engine

import (
	"sync"
)

// Sequencer tags each fetch with a generation and decides which completions
// may be applied. A completion is accepted only if its generation is newer
// than every generation accepted before it, so an older response that
// resolves late can never overwrite newer data.
type Sequencer struct {
	mu       sync.Mutex
	next     uint64 // last generation handed out
	accepted uint64 // last generation applied
	closed   bool
}

// NewSequencer creates a new sequencer instance.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns a fresh generation number. Generations start at 1.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

// Accept reports whether the completion of gen may be applied, and records
// it as the latest when it may.
func (s *Sequencer) Accept(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen <= s.accepted || gen > s.next {
		return false
	}
	s.accepted = gen
	return true
}

// Latest returns the last accepted generation, 0 if none.
func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Close rejects every later completion. Used on teardown so that fetches
// still in flight cannot mutate disposed state.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Sequencer) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
