// SPDX-License-Identifier: MIT

package archive

import (
	"fmt"

	"github.com/katalvlaran/antminer/rng"
)

// Categorical models a discrete variable with values 0..n-1.
type Categorical struct {
	*Archive[Solution[int]]
	n int
}

var _ Variable[int] = (*Categorical)(nil)

// NewCategorical returns an empty categorical archive over n values.
//
// Errors: ErrInvalidCardinality plus the errors of New.
func NewCategorical(n int, opts ...Option) (*Categorical, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCardinality, n)
	}
	s := gather(opts)
	a, err := New(s.capacity, s.influence, ByQuality[int])
	if err != nil {
		return nil, err
	}

	return &Categorical{Archive: a, n: n}, nil
}

// Cardinality returns n.
func (c *Categorical) Cardinality() int { return c.n }

// Initialise adds k uniformly drawn values of quality 0.
func (c *Categorical) Initialise(r rng.Rand, k int) {
	for i := 0; i < k; i++ {
		c.Add(Solution[int]{Value: r.Intn(c.n)})
	}
}

// Probabilities returns the normalized ACO_MV value weights:
//
//	ω(v) = w(best member using v)/u(v) + q/η
//
// where u(v) counts the members using v and η the values no member uses;
// the q/η term only exists when η > 0, and unused values get q/η alone.
//
// Complexity: O(n + members).
func (c *Categorical) Probabilities() []float64 {
	var (
		best  = make([]float64, c.n)
		used  = make([]int, c.n)
		omega = make([]float64, c.n)
		eta   int
		total float64
		i, v  int
	)
	// Members are ascending, so the last member seen for v is its best.
	for i = range c.items {
		v = c.items[i].Value
		if v < 0 || v >= c.n {
			continue
		}
		best[v] = c.weights[i]
		used[v]++
	}
	for v = 0; v < c.n; v++ {
		if used[v] == 0 {
			eta++
		}
	}
	for v = 0; v < c.n; v++ {
		if used[v] > 0 {
			omega[v] = best[v] / float64(used[v])
		}
		if eta > 0 {
			omega[v] += c.q / float64(eta)
		}
		total += omega[v]
	}
	if total > 0 {
		for v = range omega {
			omega[v] /= total
		}
	}

	return omega
}

// Sample draws a value in [0, n) by roulette over Probabilities.
//
// Errors: ErrEmptyArchive.
func (c *Categorical) Sample(r rng.Rand) (int, error) {
	if c.Len() == 0 {
		return 0, ErrEmptyArchive
	}
	if v := rng.Roulette(r, c.Probabilities()); v >= 0 {
		return v, nil
	}

	return r.Intn(c.n), nil
}
