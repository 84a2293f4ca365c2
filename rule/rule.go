package rule

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/antminer/dataset"
)

// Consequent is the prediction of a rule: a class label index for
// classification, a numeric value for regression.
type Consequent struct {
	Label int
	Value float64
}

// Rule is an ordered antecedent of conditions with a consequent.
//
// Covered and Uncovered are the class frequencies of the active instances
// the antecedent matches and misses; they are recomputed by Apply. A rule
// with no condition is Empty; ants return an Empty rule to signal that no
// rule could be built.
type Rule struct {
	Conditions []Condition
	Consequent Consequent
	Quality    float64

	Covered   []float64
	Uncovered []float64

	instances []int // active instances matched, ascending
	applied   bool
}

// Empty reports whether the rule has no condition.
func (r *Rule) Empty() bool { return len(r.Conditions) == 0 }

// Size returns the number of conditions.
func (r *Rule) Size() int { return len(r.Conditions) }

// Has reports whether the rule already tests attribute attr.
func (r *Rule) Has(attr int) bool {
	for _, c := range r.Conditions {
		if c.Attribute == attr {
			return true
		}
	}

	return false
}

// Add appends c to the antecedent. Coverage must be recomputed with Apply.
func (r *Rule) Add(c Condition) {
	r.Conditions = append(r.Conditions, c)
	r.applied = false
}

// Truncate keeps the first n conditions.
func (r *Rule) Truncate(n int) {
	if n < len(r.Conditions) {
		r.Conditions = r.Conditions[:n]
		r.applied = false
	}
}

// Remove deletes the condition at position i.
func (r *Rule) Remove(i int) {
	r.Conditions = append(r.Conditions[:i:i], r.Conditions[i+1:]...)
	r.applied = false
}

// Covers reports whether instance i satisfies every condition.
func (r *Rule) Covers(ds *dataset.Dataset, i int) bool {
	for _, c := range r.Conditions {
		if !c.Covers(ds, i) {
			return false
		}
	}

	return true
}

// Apply recomputes coverage over the instances of cov that are not
// Removed. cov is only read.
//
// Complexity: O(n·|conditions|).
func (r *Rule) Apply(ds *dataset.Dataset, cov dataset.Coverage) {
	var (
		k = ds.Classes()
		i int
		v float64
	)
	r.instances = r.instances[:0]
	if k > 0 {
		r.Covered = make([]float64, k)
		r.Uncovered = make([]float64, k)
	} else {
		r.Covered, r.Uncovered = nil, nil
	}

	for i = 0; i < ds.Size(); i++ {
		if cov[i] == dataset.Removed {
			continue
		}
		covered := r.Covers(ds, i)
		if covered {
			r.instances = append(r.instances, i)
		}
		if k == 0 {
			continue
		}
		v = ds.Value(i)
		if dataset.IsMissing(v) {
			continue
		}
		if covered {
			r.Covered[int(v)]++
		} else {
			r.Uncovered[int(v)]++
		}
	}
	r.applied = true
}

// Applied reports whether coverage is current.
func (r *Rule) Applied() bool { return r.applied }

// Instances returns the active instances matched by the last Apply.
func (r *Rule) Instances() []int { return r.instances }

// CoveredCount returns the number of instances matched by the last Apply.
func (r *Rule) CoveredCount() int { return len(r.instances) }

// Mark flags every instance covered by the last Apply with f.
func (r *Rule) Mark(cov dataset.Coverage, f dataset.Flag) int {
	for _, i := range r.instances {
		cov[i] = f
	}

	return len(r.instances)
}

// Clone returns a deep copy.
func (r *Rule) Clone() *Rule {
	out := &Rule{
		Conditions: append([]Condition(nil), r.Conditions...),
		Consequent: r.Consequent,
		Quality:    r.Quality,
		Covered:    append([]float64(nil), r.Covered...),
		Uncovered:  append([]float64(nil), r.Uncovered...),
		instances:  append([]int(nil), r.instances...),
		applied:    r.applied,
	}

	return out
}

// Equal reports whether two rules have the same antecedent and consequent.
func (r *Rule) Equal(o *Rule) bool {
	if o == nil || len(r.Conditions) != len(o.Conditions) || r.Consequent != o.Consequent {
		return false
	}
	for i := range r.Conditions {
		if r.Conditions[i] != o.Conditions[i] {
			return false
		}
	}

	return true
}

// String renders "IF a AND b THEN c".
func (r *Rule) String(ds *dataset.Dataset) string {
	var sb strings.Builder
	if r.Empty() {
		sb.WriteString("<empty>")
	} else {
		sb.WriteString("IF ")
		for i, c := range r.Conditions {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(c.String(ds))
		}
	}
	sb.WriteString(" THEN ")
	sb.WriteString(ConsequentString(ds, r.Consequent))

	return sb.String()
}

// ConsequentString renders a prediction of ds's target.
func ConsequentString(ds *dataset.Dataset, c Consequent) string {
	if ds.Classification() {
		return ds.Label(ds.Target(), float64(c.Label))
	}

	return fmt.Sprintf("%.4g", c.Value)
}
