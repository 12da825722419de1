package memory

import (
	"context"
	"sync"
)

// Sequence is a process-local app.SequenceAllocator.
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]int64)}
}

func (s *Sequence) Next(_ context.Context, counter string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counter]++
	return s.counters[counter], nil
}

