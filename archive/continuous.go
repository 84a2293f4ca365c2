// SPDX-License-Identifier: MIT

package archive

import (
	"fmt"
	"math"

	"github.com/katalvlaran/antminer/rng"
)

// Continuous models a real-valued variable bounded to [lo, hi).
type Continuous struct {
	*Archive[Solution[float64]]
	lo, hi float64
	xi     float64
}

var _ Variable[float64] = (*Continuous)(nil)

// NewContinuous returns an empty continuous archive over [lo, hi).
//
// Errors: ErrInvalidRange (lo >= hi or non-finite bounds) plus the errors
// of New.
func NewContinuous(lo, hi float64, opts ...Option) (*Continuous, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return nil, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, lo, hi)
	}
	s := gather(opts)
	a, err := New(s.capacity, s.influence, ByQuality[float64])
	if err != nil {
		return nil, err
	}

	return &Continuous{Archive: a, lo: lo, hi: hi, xi: s.convergence}, nil
}

// Bounds returns the sampling range.
func (c *Continuous) Bounds() (float64, float64) { return c.lo, c.hi }

// Initialise adds k uniform values of quality 0 (an unbiased seed).
func (c *Continuous) Initialise(r rng.Rand, k int) {
	for i := 0; i < k; i++ {
		c.Add(Solution[float64]{Value: c.lo + r.Float64()*(c.hi-c.lo)})
	}
}

// Sample picks a member by weight and draws from a Gaussian centred on its
// value. The spread is ξ times the mean distance from the chosen member to
// the others, so sampling tightens as good members cluster. Draws outside
// [lo, hi) are retried a bounded number of times, then clamped.
//
// Errors: ErrEmptyArchive.
// Complexity: O(n).
func (c *Continuous) Sample(r rng.Rand) (float64, error) {
	var k = c.Len()
	if k == 0 {
		return 0, ErrEmptyArchive
	}

	var (
		l     = c.Select(r)
		x     = c.items[l].Value
		sigma float64
		i     int
	)
	if k == 1 {
		sigma = c.xi * (c.hi - c.lo) / 2
	} else {
		for i = 0; i < k; i++ {
			sigma += math.Abs(c.items[i].Value - x)
		}
		sigma = c.xi * sigma / float64(k-1)
	}

	var v float64
	for i = 0; i < maxResample; i++ {
		v = x + sigma*r.NormFloat64()
		if v >= c.lo && v < c.hi {
			return v, nil
		}
	}

	return c.clamp(v), nil
}

func (c *Continuous) clamp(v float64) float64 {
	if !(v >= c.lo) { // also catches NaN
		return c.lo
	}
	if v >= c.hi {
		return math.Nextafter(c.hi, c.lo)
	}

	return v
}
