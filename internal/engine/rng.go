package engine

import "math/rand"

// RNG is the single source of randomness used by the engine. Implementations
// return values in [0, 1) and need not be safe for concurrent use.
type RNG interface {
	Float64() float64
}

// NewRNG returns a seeded generator; the same seed replays the same game.
func NewRNG(seed int64) RNG {
	return rand.New(rand.NewSource(seed))
}

// SequenceRNG replays a fixed list of draws, cycling when exhausted.
// An empty sequence always returns 0.
type SequenceRNG struct {
	values []float64
	next   int
}

// NewSequenceRNG creates a SequenceRNG over values.
func NewSequenceRNG(values ...float64) *SequenceRNG {
	return &SequenceRNG{values: values}
}

// Float64 returns the next value in the sequence.
func (s *SequenceRNG) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
