// Package covering is the training entry point: the sequential covering
// loop that assembles a rule list from one colony run per rule.
//
// While more than the Uncovered fraction of the instances is active, and
// at least MinCases instances are, the loop runs a colony over the active
// instances, appends the best (pruned) rule and removes the instances it
// covers. It stops early on an empty rule or when a rule removes nothing,
// so it runs at most once per instance. The list always ends with a
// default rule predicting the majority class (mean value) of whatever is
// left active, or of the whole dataset when nothing is.
//
// Unordered classification lists are learned one class at a time: every
// rule of a class predicts it, and only the covered instances of that
// class leave the pool, so the other classes still count as negatives.
// The default rule then predicts from the instances no rule matches.
// Regression targets have no classes and always use the ordered loop.
package covering

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/katalvlaran/antminer/colony"
	"github.com/katalvlaran/antminer/config"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/prune"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// ErrNilDataset is returned by Train for a nil dataset.
var ErrNilDataset = errors.New("covering: nil dataset")

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Trainer trains rule lists with fixed options. A Trainer holds no state
// between Train calls and may be used concurrently.
type Trainer struct {
	opts   config.Options
	logger *slog.Logger
}

// New validates opts.
//
// Errors: config.ErrInvalidOption.
func New(opts config.Options, options ...Option) (*Trainer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t := &Trainer{
		opts:   opts,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range options {
		o(t)
	}

	return t, nil
}

// Options returns the bound options.
func (t *Trainer) Options() config.Options { return t.opts }

// Train induces a rule list from ds. ds is not modified.
//
// Errors: ErrNilDataset, config.ErrInvalidOption (options that do not fit
// the task of ds), colony.ErrWorkerFailure, context errors.
func (t *Trainer) Train(ctx context.Context, ds *dataset.Dataset) (*rule.List, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	var (
		runID  = uuid.NewString()
		logger = t.logger.With(slog.String("run_id", runID))
		start  = time.Now()
	)
	ctx, span := startTrainSpan(ctx, runID, ds.Size())
	defer span.End()

	list, err := t.train(ctx, ds, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordTrain(ctx, time.Since(start), 0, false)
		logger.ErrorContext(ctx, "training failed", slog.Any("error", err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("covering.rules", list.Size()))
	recordTrain(ctx, time.Since(start), list.Size(), true)
	logger.InfoContext(ctx, "training finished",
		slog.Int("rules", list.Size()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return list, nil
}

func (t *Trainer) train(ctx context.Context, ds *dataset.Dataset, logger *slog.Logger) (*rule.List, error) {
	if err := compatible(t.opts, ds); err != nil {
		return nil, err
	}
	g, err := graph.Build(ds)
	if err != nil {
		return nil, err
	}

	var (
		src  = rng.New(t.opts.Seed)
		asg  = rule.AssignatorFor(ds)
		list = &rule.List{Ordered: t.opts.Ordered, Resolver: resolver(t.opts)}
	)
	logger.InfoContext(ctx, "training started",
		slog.Int("instances", ds.Size()),
		slog.Int("attributes", g.Attributes()),
		slog.String("target", ds.Attribute(ds.Target()).Name),
		slog.Bool("ordered", t.opts.Ordered),
	)

	if t.opts.Ordered || !ds.Classification() {
		cov := dataset.NewCoverage(ds.Size())
		if err = t.cover(ctx, ds, g, cov, src, nil, list, logger); err != nil {
			return nil, err
		}
		list.Default = defaultRule(ds, cov, asg)
	} else {
		for class := 0; class < ds.Classes(); class++ {
			cov := dataset.NewCoverage(ds.Size())
			fixed := rule.Fixed{Label: class}
			if err = t.cover(ctx, ds, g, cov, src.Derive(uint64(class)), &fixed, list, logger); err != nil {
				return nil, err
			}
		}
		list.Default = defaultRule(ds, settle(ds, list), asg)
	}

	if t.opts.PruneList && list.Ordered {
		lf, err := quality.ListByName(t.opts.ListQuality)
		if err != nil {
			return nil, err
		}
		list = prune.List{Quality: lf}.Prune(ds, list)
	}

	return list, nil
}

// cover runs the covering loop over cov and appends the learned rules to
// list. With fixed == nil every covered instance is removed and progress is
// measured on all instances. Otherwise each rule predicts fixed.Label, only
// the covered instances of that class are removed, and progress is measured
// on that class alone.
func (t *Trainer) cover(
	ctx context.Context,
	ds *dataset.Dataset,
	g *graph.Graph,
	cov dataset.Coverage,
	src *rng.Source,
	fixed *rule.Fixed,
	list *rule.List,
	logger *slog.Logger,
) error {
	fn, err := quality.ByName(t.opts.RuleQuality)
	if err != nil {
		return err
	}
	var (
		asg     = rule.AssignatorFor(ds)
		options = []colony.Option{colony.WithLogger(logger), colony.WithRand(src)}
		class   = -1
	)
	if fixed != nil {
		asg, class = *fixed, fixed.Label
		options = append(options, colony.WithAssignator(asg))
	}
	col, err := colony.New(ds, g, t.opts, options...)
	if err != nil {
		return err
	}

	total := float64(pending(ds, cov, class))
	for iter := 0; iter < ds.Size(); iter++ {
		active := pending(ds, cov, class)
		if total == 0 || float64(active)/total <= t.opts.Uncovered || active < t.opts.MinCases {
			break
		}

		res, err := col.Run(ctx, cov)
		if err != nil {
			return err
		}
		best := res.Best
		if best == nil || best.Empty() {
			logger.DebugContext(ctx, "no rule found", slog.Int("active", active), slog.Int("class", class))
			break
		}
		best.Apply(ds, cov)
		asg.Assign(ds, best)
		best.Quality = fn.Evaluate(ds, cov, best)

		removed := remove(ds, cov, best, class)
		if removed == 0 {
			break
		}
		list.Append(best)
		logger.DebugContext(ctx, "rule appended",
			slog.String("rule", best.String(ds)),
			slog.Float64("quality", best.Quality),
			slog.Int("removed", removed),
			slog.Int("iterations", res.Iterations),
		)
	}

	return nil
}

// pending counts the active instances of cov, restricted to class when
// class ≥ 0.
func pending(ds *dataset.Dataset, cov dataset.Coverage, class int) int {
	if class < 0 {
		return cov.Active()
	}
	var n int
	for i := range cov {
		if cov[i] != dataset.Removed && ds.Value(i) == float64(class) {
			n++
		}
	}

	return n
}

// remove flags the instances covered by r as Removed, only those of class
// when class ≥ 0, and returns how many were flagged.
func remove(ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule, class int) int {
	if class < 0 {
		return r.Mark(cov, dataset.Removed)
	}
	var n int
	for _, i := range r.Instances() {
		if ds.Value(i) == float64(class) {
			cov[i] = dataset.Removed
			n++
		}
	}

	return n
}

// settle recomputes the coverage of every rule of an unordered list over
// the whole dataset, so conflict resolution sees full class distributions,
// and returns the coverage of the instances no rule matches.
func settle(ds *dataset.Dataset, list *rule.List) dataset.Coverage {
	var (
		all  = dataset.NewCoverage(ds.Size())
		rest = dataset.NewCoverage(ds.Size())
	)
	for _, r := range list.Rules {
		r.Apply(ds, all)
		r.Mark(rest, dataset.Removed)
	}

	return rest
}

// defaultRule predicts from the active instances of cov, or from every
// instance when none is active.
func defaultRule(ds *dataset.Dataset, cov dataset.Coverage, asg rule.Assignator) *rule.Rule {
	if cov.Active() == 0 {
		cov = dataset.NewCoverage(ds.Size())
	}
	r := &rule.Rule{}
	r.Apply(ds, cov)
	asg.Assign(ds, r)

	return r
}

func resolver(opts config.Options) rule.ConflictResolution {
	if opts.ConflictResolution == config.ResolutionFrequencySum {
		return rule.FrequencySum{}
	}

	return rule.Confidence{}
}

// compatible rejects quality functions that do not fit the task of ds.
func compatible(opts config.Options, ds *dataset.Dataset) error {
	regression := opts.RuleQuality == quality.RegressionFitName
	if ds.Classification() == regression {
		return fmt.Errorf("%w: rule quality %q on a %s target",
			config.ErrInvalidOption, opts.RuleQuality, ds.Attribute(ds.Target()).Kind)
	}
	if ds.Classification() == (opts.ListQuality == quality.RMSEName) {
		return fmt.Errorf("%w: list quality %q on a %s target",
			config.ErrInvalidOption, opts.ListQuality, ds.Attribute(ds.Target()).Kind)
	}

	return nil
}
