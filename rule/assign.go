package rule

import (
	"math"

	"github.com/katalvlaran/antminer/dataset"
)

// Assignator sets a rule's consequent from its current coverage.
type Assignator interface {
	Assign(ds *dataset.Dataset, r *Rule)
}

// Majority predicts the most frequent covered class; ties go to the lowest
// label index.
type Majority struct{}

// Assign implements Assignator.
func (Majority) Assign(_ *dataset.Dataset, r *Rule) {
	r.Consequent = Consequent{Label: argmax(r.Covered)}
}

// Fixed predicts Label whatever the rule covers. Unordered rule sets use
// it to learn the rules of one class at a time.
type Fixed struct {
	Label int
}

// Assign implements Assignator.
func (f Fixed) Assign(_ *dataset.Dataset, r *Rule) {
	r.Consequent = Consequent{Label: f.Label}
}

// Mean predicts the mean covered target value.
type Mean struct{}

// Assign implements Assignator. A rule covering nothing predicts 0.
func (Mean) Assign(ds *dataset.Dataset, r *Rule) {
	v := ds.Mean(r.instances)
	if math.IsNaN(v) {
		v = 0
	}
	r.Consequent = Consequent{Value: v}
}

// AssignatorFor returns Majority for classification datasets and Mean
// otherwise.
func AssignatorFor(ds *dataset.Dataset) Assignator {
	if ds.Classification() {
		return Majority{}
	}

	return Mean{}
}

func argmax(xs []float64) int {
	var best = 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}

	return best
}
