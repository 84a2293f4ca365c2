// Package colony runs the ant colony that searches for one rule.
//
// A run is the state machine
//
//	INIT → (CONSTRUCT → BARRIER → UPDATE)* → TERMINATED
//
// CONSTRUCT launches ColonySize ants on a worker pool bounded by the
// parallel degree; ants only read the graph and the archives. BARRIER waits
// for every ant. UPDATE prunes the iteration best and calls the pheromone
// policy exactly once. The run ends after MaxIterations iterations, after
// Stagnation iterations without a global-best improvement, or when the
// context is cancelled; cancellation is checked between iterations only.
//
// All ants draw from one shared rng.Source. Runs are reproducible only with
// a parallel degree of 1 and a fixed seed: with more workers the order in
// which ants draw from the source is unspecified.
package colony

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/antminer/archive"
	"github.com/katalvlaran/antminer/config"
	"github.com/katalvlaran/antminer/construct"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/heuristic"
	"github.com/katalvlaran/antminer/pheromone"
	"github.com/katalvlaran/antminer/prune"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// archiveStream identifies the random stream that seeds the archives, so
// archive seeding costs the ants a single draw of the shared source.
const archiveStream = 1

// ErrWorkerFailure wraps any error or panic inside an ant. It aborts the
// run: the iteration cannot be trusted.
var ErrWorkerFailure = errors.New("colony: worker failure")

// Result is the outcome of one run.
type Result struct {
	Best       *rule.Rule // global best, pruned; Empty when no rule was found
	Iterations int
	Stagnated  bool
}

// Option configures a Colony.
type Option func(*Colony)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Colony) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRand shares a random source; the default is seeded from the options.
func WithRand(src *rng.Source) Option {
	return func(c *Colony) {
		if src != nil {
			c.rand = src
		}
	}
}

// WithHeuristic overrides the heuristic selected by name.
func WithHeuristic(h heuristic.Heuristic) Option {
	return func(c *Colony) {
		if h != nil {
			c.heuristic = h
		}
	}
}

// WithAssignator replaces the consequent assignator of the ants and of the
// pruner selected by name; the default follows the target kind.
func WithAssignator(a rule.Assignator) Option {
	return func(c *Colony) {
		if a != nil {
			c.factory.Assignator = a
		}
	}
}

// WithPruner overrides the pruner selected by name.
func WithPruner(p prune.Pruner) Option {
	return func(c *Colony) {
		if p != nil {
			c.pruner = p
		}
	}
}

// Colony binds the strategies of one training run to a dataset and its
// construction graph. A Colony is reused for every rule of a covering run
// but must not run concurrently with itself.
type Colony struct {
	opts      config.Options
	ds        *dataset.Dataset
	graph     *graph.Graph
	factory   construct.Factory
	quality   quality.Function
	pruner    prune.Pruner
	policy    pheromone.Policy
	heuristic heuristic.Heuristic
	rand      *rng.Source
	logger    *slog.Logger
}

// New validates opts and resolves every named strategy.
//
// Errors: config.ErrInvalidOption, graph.ErrNilDataset and the unknown-name
// errors of quality, heuristic, prune and pheromone.
func New(ds *dataset.Dataset, g *graph.Graph, opts config.Options, options ...Option) (*Colony, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || g == nil {
		return nil, graph.ErrNilDataset
	}

	fn, err := quality.ByName(opts.RuleQuality)
	if err != nil {
		return nil, err
	}
	c := &Colony{
		opts:    opts,
		ds:      ds,
		graph:   g,
		factory: construct.NewFactory(ds, fn, opts.MinCases),
		quality: fn,
		rand:    rng.New(opts.Seed),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if c.heuristic, err = heuristic.ByName(opts.Heuristic, opts.MinCases); err != nil {
		return nil, err
	}
	c.policy, err = pheromone.New(opts.Policy, pheromone.Params{
		Evaporation: opts.Evaporation,
		PBest:       opts.PBest,
		Initial:     opts.InitialPheromone,
	})
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		o(c)
	}
	if c.pruner == nil {
		if c.pruner, err = prune.ByName(opts.Pruner, fn, c.factory.Assignator); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Graph returns the construction graph.
func (c *Colony) Graph() *graph.Graph { return c.graph }

// Run searches for the best rule over the active instances of cov. cov is
// only read. Pheromones are reset and archives recreated on every call.
//
// Errors: ErrWorkerFailure, context errors, policy errors.
func (c *Colony) Run(ctx context.Context, cov dataset.Coverage) (*Result, error) {
	ctx, span := startRunSpan(ctx, cov.Active(), c.opts.ColonySize)
	defer span.End()

	res, err := c.run(ctx, cov)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	setRunSpanResult(span, res)

	return res, nil
}

func (c *Colony) run(ctx context.Context, cov dataset.Coverage) (*Result, error) {
	var (
		archives *construct.Archives
		err      error
		dir      = c.quality.Direction()
		res      = &Result{Best: &rule.Rule{Quality: dir.Worst()}}
		stale    int
	)
	// INIT
	if c.opts.Construction == config.ConstructionArchive {
		archives, err = construct.NewArchives(c.ds, c.rand.Derive(archiveStream),
			archive.WithCapacity(c.opts.ArchiveSize),
			archive.WithInfluence(c.opts.Influence),
			archive.WithConvergence(c.opts.Convergence),
		)
		if err != nil {
			return nil, err
		}
	}
	if err = c.policy.Initialise(c.graph, archives); err != nil {
		return nil, err
	}
	state := construct.State{
		Dataset:   c.ds,
		Coverage:  cov,
		Graph:     c.graph,
		Heuristic: c.heuristic.Compute(c.ds, cov, c.graph),
		Archives:  archives,
		Rand:      c.rand,
	}

	for res.Iterations < c.opts.MaxIterations {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()

		// CONSTRUCT + BARRIER
		ants, err := c.iterate(ctx, state)
		if err != nil {
			return nil, err
		}

		// UPDATE
		best, empty := c.iterationBest(ants)
		if !best.Empty() {
			best = c.pruner.Prune(c.ds, cov, best)
		}
		if err = c.policy.Update(c.graph, archives, best); err != nil {
			return nil, fmt.Errorf("colony: update: %w", err)
		}
		res.Iterations++
		recordIteration(ctx, time.Since(start), len(ants), empty)

		if c.improves(best, res.Best) {
			res.Best = best
			stale = 0
		} else {
			stale++
		}
		c.logger.Debug("colony iteration",
			slog.Int("iteration", res.Iterations),
			slog.Float64("iteration_best", best.Quality),
			slog.Float64("global_best", res.Best.Quality),
			slog.Int("empty_rules", empty),
		)
		if stale >= c.opts.Stagnation {
			res.Stagnated = true
			break
		}
	}

	return res, nil
}

// iterate runs one batch of ants and waits for all of them.
func (c *Colony) iterate(ctx context.Context, state construct.State) ([]*rule.Rule, error) {
	var (
		ants = make([]*rule.Rule, c.opts.ColonySize)
		eg   errgroup.Group
	)
	eg.SetLimit(c.opts.Workers())
	for k := range ants {
		eg.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: ant %d: panic: %v", ErrWorkerFailure, k, p)
				}
			}()
			r, err := c.factory.Create(state)
			if err != nil {
				return fmt.Errorf("%w: ant %d: %v", ErrWorkerFailure, k, err)
			}
			ants[k] = r

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		c.logger.ErrorContext(ctx, "colony iteration aborted", slog.Any("error", err))
		return nil, err
	}

	return ants, nil
}

// iterationBest returns the best ant rule (first on ties) and the number of
// empty rules.
func (c *Colony) iterationBest(ants []*rule.Rule) (*rule.Rule, int) {
	var (
		dir   = c.quality.Direction()
		best  = ants[0]
		empty int
	)
	for _, r := range ants {
		if r.Empty() {
			empty++
		}
		if dir.Compare(r.Quality, best.Quality) > 0 || (best.Empty() && !r.Empty()) {
			best = r
		}
	}

	return best, empty
}

// improves reports whether cand beats the global best by more than the
// configured precision. An empty rule never improves.
func (c *Colony) improves(cand, gbest *rule.Rule) bool {
	if cand.Empty() {
		return false
	}
	if gbest.Empty() {
		return true
	}

	return c.quality.Direction().Compare(cand.Quality, gbest.Quality) > 0 &&
		math.Abs(cand.Quality-gbest.Quality) > c.opts.Precision
}
