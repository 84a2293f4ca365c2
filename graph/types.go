// SPDX-License-Identifier: MIT

// Package graph defines the construction graph ants walk to build a rule.
//
// Vertices are one Start sentinel, one vertex per predictor attribute of a
// dataset (in attribute order, target excluded) and one End sentinel. Every
// legal edge (i,j) owns an Entry: a fixed-width vector of pheromone values
// indexed by the construction context. The context of a decision is its
// position in the rule under construction, saturated at EntryWidth-1.
//
// Concurrency:
//   - The vertex and edge sets are immutable after Build.
//   - Entry values are written only by pheromone policies during the
//     single-threaded update phase; ants read them concurrently during
//     construction. The colony barrier orders the two phases, so Entry
//     carries no lock.
package graph

import "errors"

// EntryWidth is the number of context slots per edge.
const EntryWidth = 4

// Start is the vertex index every ant begins at.
const Start = 0

// Sentinel errors for graph construction and entry updates.
var (
	// ErrNilDataset is returned by Build when the dataset is nil.
	ErrNilDataset = errors.New("graph: dataset is nil")

	// ErrInvalidPheromone is returned when a negative, NaN or infinite value is stored.
	ErrInvalidPheromone = errors.New("graph: pheromone must be finite and non-negative")

	// ErrContextOutOfRange is returned when a context index is outside [0, EntryWidth).
	ErrContextOutOfRange = errors.New("graph: context out of range")
)

// Context maps a decision position to an Entry slot.
// Complexity: O(1).
func Context(position int) int {
	if position < 0 {
		return 0
	}
	if position >= EntryWidth {
		return EntryWidth - 1
	}

	return position
}
