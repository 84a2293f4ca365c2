// Package quality provides the rule and rule-list quality oracles.
//
// Every function states its Direction; callers compare scores through
// Direction.Compare and never assume "bigger is better".
package quality

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/rule"
)

// ErrUnknownFunction is returned for an unrecognized function name.
var ErrUnknownFunction = errors.New("quality: unknown function")

// Direction tells whether higher or lower scores are better.
type Direction int

const (
	// Maximize: higher is better.
	Maximize Direction = iota

	// Minimize: lower is better.
	Minimize
)

// Compare returns +1 when a is better than b, -1 when worse, 0 on a tie.
// NaN is worse than any number.
func (d Direction) Compare(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return -1
	case math.IsNaN(b):
		return 1
	case a == b:
		return 0
	case (a > b) == (d == Maximize):
		return 1
	default:
		return -1
	}
}

// Worst returns the score every real score beats.
func (d Direction) Worst() float64 {
	if d == Maximize {
		return math.Inf(-1)
	}

	return math.Inf(1)
}

// Function scores a single rule. The rule must be applied to cov and have
// its consequent assigned.
type Function interface {
	Evaluate(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) float64
	Direction() Direction
}

// ListFunction scores a whole rule list over a dataset.
type ListFunction interface {
	Evaluate(ds *dataset.Dataset, l *rule.List) float64
	Direction() Direction
}

// Names accepted by ByName and ListByName.
const (
	SensitivitySpecificityName = "sensitivity-specificity"
	LaplaceName                = "laplace"
	MEstimateName              = "m-estimate"
	RegressionFitName          = "regression-fit"
	AccuracyName               = "accuracy"
	RMSEName                   = "rmse"
)

// ByName returns the rule function called name.
func ByName(name string) (Function, error) {
	switch name {
	case SensitivitySpecificityName:
		return SensitivitySpecificity{}, nil
	case LaplaceName:
		return Laplace{}, nil
	case MEstimateName:
		return MEstimate{M: DefaultM}, nil
	case RegressionFitName:
		return RegressionFit{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
}

// ListByName returns the list function called name.
func ListByName(name string) (ListFunction, error) {
	switch name {
	case AccuracyName:
		return Accuracy{}, nil
	case RMSEName:
		return RMSE{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
}

// confusion returns TP, FP, FN, TN of r for its predicted label.
func confusion(r *rule.Rule) (tp, fp, fn, tn float64) {
	label := r.Consequent.Label
	for c, n := range r.Covered {
		if c == label {
			tp += n
		} else {
			fp += n
		}
	}
	for c, n := range r.Uncovered {
		if c == label {
			fn += n
		} else {
			tn += n
		}
	}

	return tp, fp, fn, tn
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}

	return a / b
}
