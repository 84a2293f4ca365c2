// SPDX-License-Identifier: MIT

// Package archive implements bounded, quality-ranked solution archives.
//
// An Archive keeps at most C members sorted ascending by a comparison
// function; Lowest is the worst member and Highest the best. Once full, a
// new item enters only when it is strictly better than the current worst,
// which it then evicts. Every member carries a sampling weight derived from
// its rank (rank 1 = best), the capacity C and the influence parameter q:
//
//	w(l) = exp(-(l-1)² / (2·q²·C²)) / (q·C·√(2π))
//
// Weights are recomputed from scratch whenever membership changes.
//
// Variable archives turn an Archive into a per-attribute probability model:
//   - Continuous samples a real value from a mixture of Gaussians centred on
//     the members, bounded to the attribute's observed range.
//   - Categorical samples a discrete value with ACO_MV value weights.
//
// Archives are not safe for concurrent use; wrap them with Synchronize when
// ants sample them concurrently.
package archive

import (
	"cmp"
	"errors"

	"github.com/katalvlaran/antminer/rng"
)

// Defaults used when no Option overrides them.
const (
	// DefaultCapacity is the number of members kept by a variable archive.
	DefaultCapacity = 10

	// DefaultInfluence is q: small values concentrate weight on the best ranks.
	DefaultInfluence = 0.05

	// DefaultConvergence is ξ: the spread multiplier of continuous sampling.
	DefaultConvergence = 0.85

	// maxResample bounds the redraws of an out-of-range continuous sample.
	maxResample = 16
)

// Sentinel errors for archive construction and sampling.
var (
	// ErrEmptyArchive is returned by Sample when the archive has no member.
	ErrEmptyArchive = errors.New("archive: sample from empty archive")

	// ErrInvalidCapacity is returned for a non-positive capacity.
	ErrInvalidCapacity = errors.New("archive: capacity must be > 0")

	// ErrInvalidInfluence is returned for a non-positive or non-finite q.
	ErrInvalidInfluence = errors.New("archive: influence must be finite and > 0")

	// ErrInvalidRange is returned when a continuous range is empty or not finite.
	ErrInvalidRange = errors.New("archive: invalid value range")

	// ErrInvalidCardinality is returned when a categorical archive has fewer than one value.
	ErrInvalidCardinality = errors.New("archive: categorical cardinality must be > 0")
)

// Solution is one archived value together with the quality of the rule it
// came from.
type Solution[V any] struct {
	Value   V
	Quality float64
}

// ByQuality orders solutions by ascending quality.
func ByQuality[V any](a, b Solution[V]) int {
	return cmp.Compare(a.Quality, b.Quality)
}

// Variable is a per-attribute probability model backed by an archive.
type Variable[V any] interface {
	// Add inserts s with quality-ranked replacement; see Archive.Add.
	Add(s Solution[V]) bool

	// Update recomputes the member weights.
	Update()

	// Sample draws a value; ErrEmptyArchive when there is no member.
	Sample(r rng.Rand) (V, error)

	// Len returns the number of members.
	Len() int
}

// Option configures a variable archive.
type Option func(*settings)

type settings struct {
	capacity    int
	influence   float64
	convergence float64
}

func defaultSettings() settings {
	return settings{
		capacity:    DefaultCapacity,
		influence:   DefaultInfluence,
		convergence: DefaultConvergence,
	}
}

// WithCapacity sets the archive capacity C.
func WithCapacity(c int) Option {
	return func(s *settings) { s.capacity = c }
}

// WithInfluence sets the rank influence parameter q.
func WithInfluence(q float64) Option {
	return func(s *settings) { s.influence = q }
}

// WithConvergence sets the convergence speed ξ of continuous sampling.
func WithConvergence(xi float64) Option {
	return func(s *settings) { s.convergence = xi }
}

func gather(opts []Option) settings {
	s := defaultSettings()
	for _, o := range opts {
		o(&s)
	}

	return s
}
