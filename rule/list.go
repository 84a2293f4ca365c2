package rule

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/antminer/dataset"
)

// ConflictResolution combines the predictions of all matching rules of an
// unordered list.
type ConflictResolution interface {
	Resolve(ds *dataset.Dataset, matches []*Rule) Consequent
}

// Confidence lets the matching rule with the highest Laplace confidence
// decide; regression targets average the matching predictions.
type Confidence struct{}

// Resolve implements ConflictResolution.
func (Confidence) Resolve(ds *dataset.Dataset, matches []*Rule) Consequent {
	if !ds.Classification() {
		return meanPrediction(matches)
	}
	var (
		best     *Rule
		bestConf = math.Inf(-1)
		k        = float64(ds.Classes())
	)
	for _, r := range matches {
		var total, hit float64
		for c, n := range r.Covered {
			total += n
			if c == r.Consequent.Label {
				hit = n
			}
		}
		conf := (hit + 1) / (total + k)
		if conf > bestConf {
			best, bestConf = r, conf
		}
	}

	return best.Consequent
}

// FrequencySum adds the covered class frequencies of every matching rule
// and predicts the majority of the sum.
type FrequencySum struct{}

// Resolve implements ConflictResolution.
func (FrequencySum) Resolve(ds *dataset.Dataset, matches []*Rule) Consequent {
	if !ds.Classification() {
		return meanPrediction(matches)
	}
	sum := make([]float64, ds.Classes())
	for _, r := range matches {
		for c, n := range r.Covered {
			sum[c] += n
		}
	}

	return Consequent{Label: argmax(sum)}
}

func meanPrediction(matches []*Rule) Consequent {
	var v float64
	for _, r := range matches {
		v += r.Consequent.Value
	}

	return Consequent{Value: v / float64(len(matches))}
}

// List is a decision list (Ordered) or an unordered rule set plus a
// default rule that fires when nothing else matches.
type List struct {
	Ordered  bool
	Rules    []*Rule
	Default  *Rule
	Resolver ConflictResolution
}

// Append adds r at the end of the list.
func (l *List) Append(r *Rule) { l.Rules = append(l.Rules, r) }

// Size returns the number of rules, the default rule excluded.
func (l *List) Size() int { return len(l.Rules) }

// Predict returns the prediction for instance i of ds.
//
// Ordered lists use the first matching rule; unordered lists hand every
// match to the Resolver (Confidence when nil). With no match, or no rule,
// the default rule decides.
//
// Complexity: O(|rules|·|conditions|).
func (l *List) Predict(ds *dataset.Dataset, i int) Consequent {
	if l.Ordered {
		for _, r := range l.Rules {
			if r.Covers(ds, i) {
				return r.Consequent
			}
		}

		return l.fallback()
	}

	var matches []*Rule
	for _, r := range l.Rules {
		if r.Covers(ds, i) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return l.fallback()
	}
	res := l.Resolver
	if res == nil {
		res = Confidence{}
	}

	return res.Resolve(ds, matches)
}

func (l *List) fallback() Consequent {
	if l.Default == nil {
		return Consequent{}
	}

	return l.Default.Consequent
}

// Accuracy returns the fraction of instances of a classification dataset
// predicted correctly. Instances with a missing target are skipped.
func (l *List) Accuracy(ds *dataset.Dataset) float64 {
	var hit, n int
	for i := 0; i < ds.Size(); i++ {
		v := ds.Value(i)
		if dataset.IsMissing(v) {
			continue
		}
		n++
		if l.Predict(ds, i).Label == int(v) {
			hit++
		}
	}
	if n == 0 {
		return 0
	}

	return float64(hit) / float64(n)
}

// String renders one rule per line followed by the default rule.
func (l *List) String(ds *dataset.Dataset) string {
	var sb strings.Builder
	for i, r := range l.Rules {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, r.String(ds))
	}
	if l.Default != nil {
		label := "ELSE"
		if !l.Ordered {
			label = "DEFAULT"
		}
		fmt.Fprintf(&sb, "    %s %s\n", label, ConsequentString(ds, l.Default.Consequent))
	}

	return sb.String()
}
