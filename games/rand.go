package games

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Rand is the source of uniform draws used by every game
type Rand interface {
	// IntN returns a uniform integer in [0, n)
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRand draws from the process-wide math/rand/v2 source and is safe for concurrent use
var DefaultRand Rand = globalRand{}

// SequenceRand replays a fixed list of draws. It panics when a value falls
// outside the requested range or the list runs out.
type SequenceRand struct {
	mu     sync.Mutex
	values []int
}

// NewSequenceRand creates a SequenceRand that returns values in order
func NewSequenceRand(values ...int) *SequenceRand {
	return &SequenceRand{values: values}
}

func (s *SequenceRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		panic("games: sequence exhausted")
	}
	v := s.values[0]
	s.values = s.values[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("games: sequence value %d outside [0, %d)", v, n))
	}
	return v
}

// Remaining returns how many draws are left
func (s *SequenceRand) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
