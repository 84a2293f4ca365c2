// Package prune simplifies candidate rules after construction.
//
// Every pruner returns a rule whose quality is not worse than the input's
// and whose condition count is not larger. A non-empty rule keeps at least
// one condition; an empty rule is returned unchanged.
package prune

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rule"
)

// DefaultMaxEvaluations bounds the quality evaluations of Greedy.
const DefaultMaxEvaluations = 256

// ErrUnknownPruner is returned for an unrecognized pruner name.
var ErrUnknownPruner = errors.New("prune: unknown pruner")

// Names accepted by ByName.
const (
	NoneName       = "none"
	SinglePassName = "single-pass"
	BacktrackName  = "backtrack"
	GreedyName     = "greedy"
)

// Pruner simplifies r over the active instances of cov. r is not modified;
// the returned rule is applied to cov with consequent and quality set.
type Pruner interface {
	Prune(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) *rule.Rule
}

// ByName returns the pruner called name.
func ByName(name string, fn quality.Function, asg rule.Assignator) (Pruner, error) {
	switch name {
	case NoneName:
		return None{}, nil
	case SinglePassName:
		return SinglePass{Quality: fn, Assignator: asg}, nil
	case BacktrackName:
		return Backtrack{Quality: fn, Assignator: asg}, nil
	case GreedyName:
		return Greedy{Quality: fn, Assignator: asg, MaxEvaluations: DefaultMaxEvaluations}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPruner, name)
	}
}

// None returns the rule unchanged.
type None struct{}

// Prune implements Pruner.
func (None) Prune(_ *dataset.Dataset, _ dataset.Coverage, r *rule.Rule) *rule.Rule {
	return r.Clone()
}

// evaluate re-applies r to cov, reassigns its consequent and sets its
// quality.
func evaluate(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule, fn quality.Function, asg rule.Assignator) {
	r.Apply(ds, cov)
	asg.Assign(ds, r)
	r.Quality = fn.Evaluate(ds, cov, r)
}

// SinglePass removes the last condition as long as quality does not drop.
type SinglePass struct {
	Quality    quality.Function
	Assignator rule.Assignator
}

// Prune implements Pruner.
//
// Complexity: O(k) evaluations for k conditions.
func (p SinglePass) Prune(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) *rule.Rule {
	best := r.Clone()
	if best.Empty() {
		return best
	}
	evaluate(ds, cov, best, p.Quality, p.Assignator)
	dir := p.Quality.Direction()

	for best.Size() > 1 {
		cand := best.Clone()
		cand.Truncate(cand.Size() - 1)
		evaluate(ds, cov, cand, p.Quality, p.Assignator)
		if dir.Compare(cand.Quality, best.Quality) < 0 {
			break
		}
		best = cand
	}

	return best
}

// Backtrack evaluates every prefix of the rule and keeps the best one; on a
// tie the shorter prefix wins.
type Backtrack struct {
	Quality    quality.Function
	Assignator rule.Assignator
}

// Prune implements Pruner.
//
// Complexity: O(k) evaluations for k conditions.
func (p Backtrack) Prune(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) *rule.Rule {
	best := r.Clone()
	if best.Empty() {
		return best
	}
	evaluate(ds, cov, best, p.Quality, p.Assignator)
	dir := p.Quality.Direction()

	for n := r.Size() - 1; n >= 1; n-- {
		cand := r.Clone()
		cand.Truncate(n)
		evaluate(ds, cov, cand, p.Quality, p.Assignator)
		if dir.Compare(cand.Quality, best.Quality) >= 0 {
			best = cand
		}
	}

	return best
}

// Greedy repeatedly removes the single condition, at any position, whose
// removal gives the best quality, while quality does not drop. The search
// stops after MaxEvaluations quality evaluations.
type Greedy struct {
	Quality        quality.Function
	Assignator     rule.Assignator
	MaxEvaluations int
}

// Prune implements Pruner.
//
// Complexity: O(min(k², MaxEvaluations)) evaluations.
func (p Greedy) Prune(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) *rule.Rule {
	best := r.Clone()
	if best.Empty() {
		return best
	}
	evaluate(ds, cov, best, p.Quality, p.Assignator)

	var (
		dir    = p.Quality.Direction()
		budget = p.MaxEvaluations
	)
	if budget <= 0 {
		budget = DefaultMaxEvaluations
	}

	for best.Size() > 1 && budget > 0 {
		var step *rule.Rule
		for i := 0; i < best.Size() && budget > 0; i++ {
			cand := best.Clone()
			cand.Remove(i)
			evaluate(ds, cov, cand, p.Quality, p.Assignator)
			budget--
			if step == nil || dir.Compare(cand.Quality, step.Quality) > 0 {
				step = cand
			}
		}
		if step == nil || dir.Compare(step.Quality, best.Quality) < 0 {
			break
		}
		best = step
	}

	return best
}
