// SPDX-License-Identifier: MIT

package archive

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/antminer/rng"
)

// Archive is a bounded population kept in ascending order.
type Archive[T any] struct {
	capacity int
	q        float64
	cmp      func(a, b T) int
	items    []T
	weights  []float64 // weights[i] belongs to items[i]
}

// New returns an empty Archive of the given capacity and influence q.
//
// Errors: ErrInvalidCapacity, ErrInvalidInfluence.
// Complexity: O(capacity).
func New[T any](capacity int, q float64, cmp func(a, b T) int) (*Archive[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if !(q > 0) || math.IsInf(q, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInfluence, q)
	}

	return &Archive[T]{
		capacity: capacity,
		q:        q,
		cmp:      cmp,
		items:    make([]T, 0, capacity),
		weights:  make([]float64, 0, capacity),
	}, nil
}

// Add inserts item in sorted position. When the archive is full the item
// replaces the current worst only if it is strictly better; a tie does not
// replace. It reports whether the item was inserted.
//
// Complexity: O(C) (binary search + slice shift + weight refresh).
func (a *Archive[T]) Add(item T) bool {
	if len(a.items) == a.capacity {
		if a.cmp(item, a.items[0]) <= 0 {
			return false
		}
		// Evict the worst member.
		copy(a.items, a.items[1:])
		a.items = a.items[:len(a.items)-1]
	}

	// Insert after equal members so older solutions keep their rank.
	var pos = sort.Search(len(a.items), func(i int) bool {
		return a.cmp(a.items[i], item) > 0
	})
	var zero T
	a.items = append(a.items, zero)
	copy(a.items[pos+1:], a.items[pos:])
	a.items[pos] = item
	a.Update()

	return true
}

// Update recomputes every member weight from its current rank.
//
// Complexity: O(n).
func (a *Archive[T]) Update() {
	var (
		n     = len(a.items)
		qc    = a.q * float64(a.capacity)
		norm  = 1 / (qc * math.Sqrt(2*math.Pi))
		denom = 2 * qc * qc
		i     int
		l     float64
	)
	a.weights = a.weights[:0]
	for i = 0; i < n; i++ {
		l = float64(n - i) // rank, 1 = best = last
		a.weights = append(a.weights, norm*math.Exp(-(l-1)*(l-1)/denom))
	}
}

// Len returns the number of members.
func (a *Archive[T]) Len() int { return len(a.items) }

// Capacity returns C.
func (a *Archive[T]) Capacity() int { return a.capacity }

// Full reports whether Len() == Capacity().
func (a *Archive[T]) Full() bool { return len(a.items) == a.capacity }

// Lowest returns the worst member; ok is false when the archive is empty.
func (a *Archive[T]) Lowest() (T, bool) {
	var zero T
	if len(a.items) == 0 {
		return zero, false
	}

	return a.items[0], true
}

// Highest returns the best member; ok is false when the archive is empty.
func (a *Archive[T]) Highest() (T, bool) {
	var zero T
	if len(a.items) == 0 {
		return zero, false
	}

	return a.items[len(a.items)-1], true
}

// Members returns a copy of the members in ascending order.
func (a *Archive[T]) Members() []T {
	out := make([]T, len(a.items))
	copy(out, a.items)

	return out
}

// Weights returns a copy of the member weights, aligned with Members.
func (a *Archive[T]) Weights() []float64 {
	out := make([]float64, len(a.weights))
	copy(out, a.weights)

	return out
}

// Select draws a member index by roulette over the weights, -1 when empty.
func (a *Archive[T]) Select(r rng.Rand) int {
	return rng.Roulette(r, a.weights)
}
