package quality

import (
	"math"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/rule"
)

// DefaultM is the m of MEstimate when built by name.
const DefaultM = 2.0

// SensitivitySpecificity is TP/(TP+FN) · TN/(FP+TN).
type SensitivitySpecificity struct{}

// Evaluate implements Function.
func (SensitivitySpecificity) Evaluate(_ *dataset.Dataset, _ dataset.Coverage, r *rule.Rule) float64 {
	tp, fp, fn, tn := confusion(r)

	return ratio(tp, tp+fn) * ratio(tn, fp+tn)
}

// Direction implements Function.
func (SensitivitySpecificity) Direction() Direction { return Maximize }

// Laplace is (TP+1)/(TP+FP+k) with k classes.
type Laplace struct{}

// Evaluate implements Function.
func (Laplace) Evaluate(ds *dataset.Dataset, _ dataset.Coverage, r *rule.Rule) float64 {
	tp, fp, _, _ := confusion(r)

	return (tp + 1) / (tp + fp + float64(ds.Classes()))
}

// Direction implements Function.
func (Laplace) Direction() Direction { return Maximize }

// MEstimate is (TP + M·prior)/(TP+FP+M), prior being the class frequency
// among active instances.
type MEstimate struct {
	M float64
}

// Evaluate implements Function.
func (m MEstimate) Evaluate(_ *dataset.Dataset, _ dataset.Coverage, r *rule.Rule) float64 {
	tp, fp, fn, tn := confusion(r)
	prior := ratio(tp+fn, tp+fp+fn+tn)

	return ratio(tp+m.M*prior, tp+fp+m.M)
}

// Direction implements Function.
func (MEstimate) Direction() Direction { return Maximize }

// RegressionFit rewards rules that cover many active instances with a low
// error: coverage · (1 − RMSE_covered/σ_active).
type RegressionFit struct{}

// Evaluate implements Function.
func (RegressionFit) Evaluate(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule) float64 {
	var (
		active   = ds.Select(cov, dataset.NotCovered, dataset.RuleCovered)
		covered  = r.Instances()
		sigma    = stddev(ds, active)
		rmse     = rmseAround(ds, covered, r.Consequent.Value)
		fraction = ratio(float64(len(covered)), float64(len(active)))
	)
	if sigma == 0 {
		return fraction
	}

	return fraction * (1 - rmse/sigma)
}

// Direction implements Function.
func (RegressionFit) Direction() Direction { return Maximize }

// Accuracy is the fraction of correctly classified instances.
type Accuracy struct{}

// Evaluate implements ListFunction.
func (Accuracy) Evaluate(ds *dataset.Dataset, l *rule.List) float64 { return l.Accuracy(ds) }

// Direction implements ListFunction.
func (Accuracy) Direction() Direction { return Maximize }

// RMSE is the root mean squared error of a regression list.
type RMSE struct{}

// Evaluate implements ListFunction.
func (RMSE) Evaluate(ds *dataset.Dataset, l *rule.List) float64 {
	var (
		sum float64
		n   int
	)
	for i := 0; i < ds.Size(); i++ {
		v := ds.Value(i)
		if dataset.IsMissing(v) {
			continue
		}
		d := l.Predict(ds, i).Value - v
		sum += d * d
		n++
	}
	if n == 0 {
		return 0
	}

	return math.Sqrt(sum / float64(n))
}

// Direction implements ListFunction.
func (RMSE) Direction() Direction { return Minimize }

func stddev(ds *dataset.Dataset, instances []int) float64 {
	mean := ds.Mean(instances)
	if math.IsNaN(mean) {
		return 0
	}

	return rmseAround(ds, instances, mean)
}

func rmseAround(ds *dataset.Dataset, instances []int, center float64) float64 {
	var (
		sum float64
		n   int
	)
	for _, i := range instances {
		v := ds.Value(i)
		if dataset.IsMissing(v) {
			continue
		}
		sum += (v - center) * (v - center)
		n++
	}
	if n == 0 {
		return 0
	}

	return math.Sqrt(sum / float64(n))
}
