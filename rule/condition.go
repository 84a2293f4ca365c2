// Package rule defines conditions, rules, rule lists and the strategies
// that assign and combine rule predictions.
package rule

import (
	"fmt"

	"github.com/katalvlaran/antminer/dataset"
)

// Relation is the comparison a Condition applies to an attribute value.
type Relation int

const (
	// EqualTo matches a nominal label index.
	EqualTo Relation = iota

	// LessThanOrEqual matches x <= Value.
	LessThanOrEqual

	// GreaterThan matches x > Value.
	GreaterThan

	// InRange matches Value < x <= Upper.
	InRange
)

// String returns the operator symbol.
func (r Relation) String() string {
	switch r {
	case EqualTo:
		return "="
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case InRange:
		return "in"
	default:
		return "?"
	}
}

// Condition is one attribute test of a rule antecedent.
type Condition struct {
	Attribute int
	Relation  Relation
	Value     float64
	Upper     float64 // only for InRange
}

// Satisfies reports whether v passes the test. Missing values never pass.
// Complexity: O(1).
func (c Condition) Satisfies(v float64) bool {
	if dataset.IsMissing(v) {
		return false
	}
	switch c.Relation {
	case EqualTo:
		return v == c.Value
	case LessThanOrEqual:
		return v <= c.Value
	case GreaterThan:
		return v > c.Value
	case InRange:
		return v > c.Value && v <= c.Upper
	default:
		return false
	}
}

// Covers reports whether instance i of ds passes the test.
func (c Condition) Covers(ds *dataset.Dataset, i int) bool {
	return c.Satisfies(ds.At(i, c.Attribute))
}

// String renders the condition with attribute names and labels.
func (c Condition) String(ds *dataset.Dataset) string {
	name := ds.Attribute(c.Attribute).Name
	switch c.Relation {
	case EqualTo:
		return fmt.Sprintf("%s = %s", name, ds.Label(c.Attribute, c.Value))
	case InRange:
		return fmt.Sprintf("%g < %s <= %g", c.Value, name, c.Upper)
	default:
		return fmt.Sprintf("%s %s %g", name, c.Relation, c.Value)
	}
}
