// SPDX-License-Identifier: MIT

// Package dataset holds the tabular training data consumed by the rule
// induction engine.
//
// A Dataset is immutable after construction: instances × attributes stored
// row-major in a flat []float64, plus the index of the target attribute.
// Nominal values are stored as the index of their label; missing values are
// NaN. Coverage state lives outside the Dataset in a Coverage slice so that
// many ants can read the same Dataset concurrently while each works on its
// own copy of the flags.
package dataset

import (
	"errors"
	"math"
)

// Sentinel errors for dataset construction and queries.
var (
	// ErrEmptyDataset is returned when a dataset has no instances or no attributes.
	ErrEmptyDataset = errors.New("dataset: no instances or attributes")

	// ErrUnknownAttribute is returned when an attribute name or index is not present.
	ErrUnknownAttribute = errors.New("dataset: unknown attribute")

	// ErrBadTarget is returned when the target attribute is out of range.
	ErrBadTarget = errors.New("dataset: invalid target attribute")

	// ErrRaggedRow is returned when a row does not have one value per attribute.
	ErrRaggedRow = errors.New("dataset: row length does not match attributes")

	// ErrUnknownValue is returned when a nominal label is not declared by its attribute.
	ErrUnknownValue = errors.New("dataset: unknown nominal value")
)

// Missing is the in-memory encoding of a missing value.
var Missing = math.NaN()

// IsMissing reports whether v encodes a missing value.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Kind distinguishes nominal from continuous attributes.
type Kind int

const (
	// Nominal attributes take one of a fixed set of labels.
	Nominal Kind = iota

	// Continuous attributes take real values.
	Continuous
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k == Nominal {
		return "nominal"
	}

	return "continuous"
}

// Attribute describes one column.
//
// For Nominal attributes Values lists the labels; the stored value of an
// instance is the label index. For Continuous attributes Lower and Upper are
// the observed bounds (missing values excluded).
type Attribute struct {
	Name   string
	Kind   Kind
	Values []string
	Lower  float64
	Upper  float64
}

// Len returns the number of labels of a nominal attribute, 0 otherwise.
func (a Attribute) Len() int {
	if a.Kind != Nominal {
		return 0
	}

	return len(a.Values)
}

// Flag is the per-instance coverage state.
type Flag uint8

const (
	// NotCovered marks an active instance not covered by the rule under construction.
	NotCovered Flag = iota

	// RuleCovered marks an active instance covered by the rule under construction.
	RuleCovered

	// Removed marks an instance already covered by a rule in the list.
	Removed
)

// Coverage holds one Flag per instance.
type Coverage []Flag

// NewCoverage returns n flags, all NotCovered.
func NewCoverage(n int) Coverage {
	return make(Coverage, n)
}

// Clone returns an independent copy of c.
func (c Coverage) Clone() Coverage {
	out := make(Coverage, len(c))
	copy(out, c)

	return out
}

// Reset turns every RuleCovered flag back into NotCovered; Removed stays.
// Complexity: O(n).
func (c Coverage) Reset() {
	var i int
	for i = range c {
		if c[i] == RuleCovered {
			c[i] = NotCovered
		}
	}
}

// Count returns the number of instances whose flag is one of flags.
// Complexity: O(n).
func (c Coverage) Count(flags ...Flag) int {
	var (
		n int
		f Flag
	)
	for _, f = range c {
		if hasFlag(f, flags) {
			n++
		}
	}

	return n
}

// Active returns the number of instances that are not Removed.
func (c Coverage) Active() int {
	return len(c) - c.Count(Removed)
}

func hasFlag(f Flag, flags []Flag) bool {
	for _, x := range flags {
		if f == x {
			return true
		}
	}

	return false
}
