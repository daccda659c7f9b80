package lookup

import "sync/atomic"

// Sequencer issues monotonically increasing request numbers. A response is
// only displayed if its number is still the latest issued.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether seq is the most recently issued number
func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}
