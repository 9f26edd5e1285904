package prng

import (
	"fairdraw/domain/core"
	"fairdraw/ports"
)

// Stream turns one seed into an ordered sequence of raw words.
//
// A Stream belongs to a single session and is not safe for concurrent use.
// Only the counter changes; the seed is fixed for the stream's lifetime.
type Stream struct {
	seed     core.Seed
	counter  uint64
	expander ports.Expander
}

// NewStream binds a stream to seed with its counter at zero. A degenerate
// seed is rejected with core.ErrEmptySeed so that it can never silently
// produce a predictable sequence. A nil expander selects SHA-256.
func NewStream(seed core.Seed, expander ports.Expander) (*Stream, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if expander == nil {
		expander = DefaultExpander()
	}
	return &Stream{seed: seed, expander: expander}, nil
}

// Next returns the word at the current position and advances the counter.
func (s *Stream) Next() uint64 {
	v := s.expander.Expand(s.seed, s.counter)
	s.counter++
	return v
}

// Counter returns how many words have been consumed.
func (s *Stream) Counter() uint64 {
	return s.counter
}

// Seed returns the seed the stream is bound to.
func (s *Stream) Seed() core.Seed {
	return s.seed
}

// Expander returns the expander used by the stream.
func (s *Stream) Expander() ports.Expander {
	return s.expander
}
