// Package config holds the immutable training configuration.
//
// Options is a plain value: build it with DefaultOptions, adjust fields or
// Load it from a file, call Validate once, then pass it by value into every
// component. Nothing in the engine mutates it, so several configurations can
// train concurrently in one process.
package config

import (
	"errors"
	"runtime"
)

// ErrInvalidOption is the configuration error: an option value is out of
// range or two options are inconsistent. It is reported before any
// iteration runs.
var ErrInvalidOption = errors.New("config: invalid option")

// Strategy names.
const (
	PrunerNone       = "none"
	PrunerSinglePass = "single-pass"
	PrunerBacktrack  = "backtrack"
	PrunerGreedy     = "greedy"

	PolicyMaxMin  = "max-min"
	PolicyLevel   = "level"
	PolicyArchive = "archive"

	ConstructionDiscretization = "discretization"
	ConstructionArchive        = "archive"

	ResolutionConfidence   = "confidence"
	ResolutionFrequencySum = "frequency-sum"
)

// Options is the full set of recognized training options.
type Options struct {
	// ColonySize is the number of ants per iteration.
	ColonySize int `mapstructure:"colony_size" yaml:"colony_size" validate:"gt=0"`

	// ArchiveSize is the capacity of every variable archive.
	ArchiveSize int `mapstructure:"archive_size" yaml:"archive_size" validate:"gt=0"`

	// Parallel bounds the ants running at once; 0 means runtime.NumCPU().
	Parallel int `mapstructure:"parallel" yaml:"parallel" validate:"gte=0"`

	// MaxIterations bounds the colony iterations per rule.
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations" validate:"gt=0"`

	// Stagnation stops a colony after this many iterations without a
	// global-best improvement.
	Stagnation int `mapstructure:"stagnation" yaml:"stagnation" validate:"gt=0"`

	// Evaporation is ρ: pheromone is multiplied by (1-ρ) each iteration.
	Evaporation float64 `mapstructure:"evaporation" yaml:"evaporation" validate:"gt=0,lt=1"`

	// PBest derives the MAX-MIN lower bound.
	PBest float64 `mapstructure:"p_best" yaml:"p_best" validate:"gt=0,lt=1"`

	// Convergence is ξ, the spread multiplier of continuous archive sampling.
	Convergence float64 `mapstructure:"convergence" yaml:"convergence" validate:"gt=0"`

	// Influence is q, the rank influence of archive weights.
	Influence float64 `mapstructure:"influence" yaml:"influence" validate:"gt=0"`

	// Precision is the margin a new global best must clear to count as an
	// improvement.
	Precision float64 `mapstructure:"precision" yaml:"precision" validate:"gte=0"`

	// MinCases is the minimum number of instances a rule must cover.
	MinCases int `mapstructure:"min_cases" yaml:"min_cases" validate:"gt=0"`

	// Uncovered stops covering once the active fraction drops to it.
	Uncovered float64 `mapstructure:"uncovered" yaml:"uncovered" validate:"gte=0,lt=1"`

	// InitialPheromone is broadcast to every edge at the start of a colony run.
	InitialPheromone float64 `mapstructure:"initial_pheromone" yaml:"initial_pheromone" validate:"gt=0"`

	// Seed feeds the shared random source; 0 selects a fixed default.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Ordered selects a decision list (true) or an unordered rule set.
	Ordered bool `mapstructure:"ordered" yaml:"ordered"`

	// PruneList drops trailing rules that do not improve list quality.
	PruneList bool `mapstructure:"prune_list" yaml:"prune_list"`

	Pruner             string `mapstructure:"pruner" yaml:"pruner" validate:"oneof=none single-pass backtrack greedy"`
	Heuristic          string `mapstructure:"heuristic" yaml:"heuristic" validate:"oneof=none entropy dynamic-entropy"`
	RuleQuality        string `mapstructure:"rule_quality" yaml:"rule_quality" validate:"oneof=sensitivity-specificity laplace m-estimate regression-fit"`
	ListQuality        string `mapstructure:"list_quality" yaml:"list_quality" validate:"oneof=accuracy rmse"`
	ConflictResolution string `mapstructure:"conflict_resolution" yaml:"conflict_resolution" validate:"oneof=confidence frequency-sum"`
	Policy             string `mapstructure:"policy" yaml:"policy" validate:"oneof=max-min level archive"`
	Construction       string `mapstructure:"construction" yaml:"construction" validate:"oneof=discretization archive"`
}

// DefaultOptions returns the classification defaults.
func DefaultOptions() Options {
	return Options{
		ColonySize:         60,
		ArchiveSize:        10,
		Parallel:           0,
		MaxIterations:      1500,
		Stagnation:         10,
		Evaporation:        0.1,
		PBest:              0.05,
		Convergence:        0.85,
		Influence:          0.05,
		Precision:          1e-9,
		MinCases:           10,
		Uncovered:          0.01,
		InitialPheromone:   1.0,
		Seed:               0,
		Ordered:            true,
		PruneList:          false,
		Pruner:             PrunerBacktrack,
		Heuristic:          "dynamic-entropy",
		RuleQuality:        "sensitivity-specificity",
		ListQuality:        "accuracy",
		ConflictResolution: ResolutionConfidence,
		Policy:             PolicyMaxMin,
		Construction:       ConstructionDiscretization,
	}
}

// RegressionDefaults returns DefaultOptions with regression oracles.
func RegressionDefaults() Options {
	o := DefaultOptions()
	o.RuleQuality = "regression-fit"
	o.ListQuality = "rmse"

	return o
}

// Workers returns the effective parallel degree.
func (o Options) Workers() int {
	if o.Parallel <= 0 {
		return runtime.NumCPU()
	}

	return o.Parallel
}
