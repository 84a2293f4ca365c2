// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"math"
)

// Entry is the pheromone vector of one edge.
type Entry struct {
	initial float64
	values  [EntryWidth]float64
}

// Value returns the pheromone stored for ctx. Out-of-range contexts are
// saturated, see Context.
// Complexity: O(1).
func (e *Entry) Value(ctx int) float64 {
	return e.values[Context(ctx)]
}

// Set stores v for ctx.
//
// Errors: ErrContextOutOfRange, ErrInvalidPheromone.
// Complexity: O(1).
func (e *Entry) Set(ctx int, v float64) error {
	if ctx < 0 || ctx >= EntryWidth {
		return fmt.Errorf("%w: %d", ErrContextOutOfRange, ctx)
	}
	if err := checkValue(v); err != nil {
		return err
	}
	e.values[ctx] = v

	return nil
}

// SetInitial records v as the initial value and broadcasts it to every context.
//
// Errors: ErrInvalidPheromone.
// Complexity: O(EntryWidth).
func (e *Entry) SetInitial(v float64) error {
	if err := checkValue(v); err != nil {
		return err
	}
	e.initial = v
	for i := range e.values {
		e.values[i] = v
	}

	return nil
}

// Initial returns the last value passed to SetInitial.
func (e *Entry) Initial() float64 { return e.initial }

// Values returns a copy of all context values.
func (e *Entry) Values() [EntryWidth]float64 { return e.values }

func checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPheromone, v)
	}

	return nil
}
