// Package rng centralizes the random source shared by all ants of a run.
//
// Goals:
//   - Determinism: same seed and a single worker ⇒ identical draws.
//   - Encapsulation: one factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Source wraps one *rand.Rand
//     behind a mutex so every ant of a colony can draw from the same seeded
//     stream. With more than one worker the interleaving of draws across
//     goroutines is unspecified, so results are reproducible only for a
//     parallel degree of 1.
package rng

import (
	"math/rand"
	"sync"
)

// DefaultSeed is the fixed seed used when callers pass seed==0.
const DefaultSeed int64 = 1

// Rand is the subset of *rand.Rand consumed by samplers and ants.
type Rand interface {
	Float64() float64
	Intn(n int) int
	NormFloat64() float64
}

var _ Rand = (*rand.Rand)(nil)
var _ Rand = (*Source)(nil)

// Source is a mutex-guarded seeded random stream.
type Source struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Source seeded with seed (seed==0 ⇒ DefaultSeed).
// Complexity: O(1).
func New(seed int64) *Source {
	s := seed
	if s == 0 {
		s = DefaultSeed
	}

	return &Source{r: rand.New(rand.NewSource(s))}
}

// Float64 returns a uniform value in [0,1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.r.Float64()
}

// Intn returns a uniform value in [0,n). It panics if n <= 0, as rand.Intn does.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.r.Intn(n)
}

// NormFloat64 returns a standard normal draw.
func (s *Source) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.r.NormFloat64()
}

// Derive returns an independent Source whose seed is mixed from the next
// draw of s and stream. Use it during setup, not in hot loops.
func (s *Source) Derive(stream uint64) *Source {
	s.mu.Lock()
	parent := s.r.Int63()
	s.mu.Unlock()

	return New(DeriveSeed(parent, stream))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new seed
// with a SplitMix64 finalizer, so neighbouring streams are decorrelated.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	if x == 0 {
		return DefaultSeed
	}

	return int64(x)
}

// Roulette draws an index with probability proportional to weights.
// Non-positive and NaN weights never win. It returns -1 when no weight is
// positive.
//
// Complexity: O(len(weights)).
func Roulette(r Rand, weights []float64) int {
	var (
		total float64
		i     int
		w     float64
		last  = -1
	)
	for i, w = range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}

	var (
		slot = r.Float64() * total
		acc  float64
	)
	for i, w = range weights {
		if !(w > 0) {
			continue
		}
		acc += w
		if slot < acc {
			return i
		}
	}

	return last // floating point slack
}
