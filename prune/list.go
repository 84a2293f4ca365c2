package prune

import (
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rule"
)

// List drops trailing rules of a decision list while the list quality does
// not get worse. The first rule is always kept. Every candidate gets a
// default rule assigned from the instances its remaining rules leave
// uncovered, so a dropped rule's instances fall to an up-to-date default.
type List struct {
	Quality quality.ListFunction

	// Assignator computes default rules; nil selects rule.AssignatorFor.
	Assignator rule.Assignator
}

// Prune returns a pruned copy of l; l and its rules are not modified.
// Unordered lists are returned as a copy unchanged.
//
// Complexity: O(|rules|) list evaluations.
func (p List) Prune(ds *dataset.Dataset, l *rule.List) *rule.List {
	out := &rule.List{
		Ordered:  l.Ordered,
		Rules:    append([]*rule.Rule(nil), l.Rules...),
		Default:  l.Default,
		Resolver: l.Resolver,
	}
	if !l.Ordered {
		return out
	}

	var (
		asg  = p.Assignator
		dir  = p.Quality.Direction()
		best = p.Quality.Evaluate(ds, out)
	)
	if asg == nil {
		asg = rule.AssignatorFor(ds)
	}
	for out.Size() > 1 {
		rules := out.Rules[:out.Size()-1]
		cand := &rule.List{
			Ordered:  true,
			Rules:    rules,
			Default:  remainder(ds, rules, asg),
			Resolver: out.Resolver,
		}
		q := p.Quality.Evaluate(ds, cand)
		if dir.Compare(q, best) < 0 {
			break
		}
		out, best = cand, q
	}

	return out
}

// remainder returns a default rule assigned from the instances no rule of
// rules matches, or from every instance when all are matched.
func remainder(ds *dataset.Dataset, rules []*rule.Rule, asg rule.Assignator) *rule.Rule {
	var (
		cov     = dataset.NewCoverage(ds.Size())
		matched int
	)
	for i := 0; i < ds.Size(); i++ {
		for _, r := range rules {
			if r.Covers(ds, i) {
				cov[i] = dataset.Removed
				matched++
				break
			}
		}
	}
	if matched == ds.Size() {
		cov = dataset.NewCoverage(ds.Size())
	}
	d := &rule.Rule{}
	d.Apply(ds, cov)
	asg.Assign(ds, d)

	return d
}
