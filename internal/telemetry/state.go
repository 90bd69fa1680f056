package telemetry

import "sync/atomic"

// State holds the most recent Sample. Set publishes a new immutable snapshot
// by swapping a pointer, so Get always observes all four fields from a single
// publish. Safe for one writer and any number of readers.
type State struct {
	current atomic.Pointer[Sample]
}

// NewState returns a State holding the zero Sample.
func NewState() *State {
	s := &State{}
	s.current.Store(&Sample{})
	return s
}

// Get returns the latest published sample.
func (s *State) Get() Sample {
	p := s.current.Load()
	if p == nil {
		return Sample{}
	}
	return *p
}

// Set replaces the published sample.
func (s *State) Set(sample Sample) {
	snap := sample
	s.current.Store(&snap)
}
