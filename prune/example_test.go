// Package prune_test shows how a pruner shortens a rule without losing
// quality.
package prune_test

import (
	"fmt"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/prune"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rule"
)

// ExampleBacktrack prunes "sunny AND high AND false" on the weather data.
// The last condition only loses a true positive, so the best prefix drops it.
func ExampleBacktrack() {
	// 1) Load the nominal weather sample; every instance is active.
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())

	// 2) Build the over-specialized rule.
	r := &rule.Rule{}
	r.Add(rule.Condition{Attribute: 0, Relation: rule.EqualTo, Value: 0}) // outlook = sunny
	r.Add(rule.Condition{Attribute: 2, Relation: rule.EqualTo, Value: 0}) // humidity = high
	r.Add(rule.Condition{Attribute: 3, Relation: rule.EqualTo, Value: 0}) // windy = false

	// 3) Keep the best prefix under sensitivity × specificity.
	p := prune.Backtrack{Quality: quality.SensitivitySpecificity{}, Assignator: rule.Majority{}}
	best := p.Prune(ds, cov, r)

	fmt.Println(best.String(ds))
	fmt.Printf("quality=%.2f covered=%d\n", best.Quality, best.CoveredCount())
	// Output:
	// IF outlook = sunny AND humidity = high THEN no
	// quality=0.60 covered=3
}
