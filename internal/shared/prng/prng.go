// Package prng derives stable pseudo-random streams from string identifiers.
//
// The same id always yields the same sequence for the lifetime of the
// process, which keeps control-condition visuals stable across re-renders
// while carrying no information about the node.
package prng

import (
	"github.com/cespare/xxhash/v2"
)

// LCG parameters (Numerical Recipes); the top 53 bits of state feed Float64.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// Stream is a linear congruential generator seeded from a string id.
// A Stream is not safe for concurrent use; create one per call site.
type Stream struct {
	state uint64
}

// New returns a stream seeded from xxhash(id).
func New(id string) *Stream {
	return &Stream{state: Hash(id)}
}

// NewWithSalt mixes a salt into the seed so independent channels (color,
// layout) keyed by the same id do not share a sequence.
func NewWithSalt(id, salt string) *Stream {
	return &Stream{state: Hash(salt + "\x00" + id)}
}

// Hash is the non-cryptographic 64-bit hash used for seeding.
func Hash(id string) uint64 {
	return xxhash.Sum64String(id)
}

func (s *Stream) next() uint64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return s.state
}

// Float64 returns the next value in [0,1).
func (s *Stream) Float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

// Intn returns the next value in [0,n). It returns 0 when n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}

// Index maps id onto [0,n) without allocating a stream.
func Index(id string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Hash(id) % uint64(n))
}
