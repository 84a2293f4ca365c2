package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/katalvlaran/antminer/config"
)

// optionFlags maps command-line flags to option keys.
var optionFlags = map[string]string{
	"colony-size":         "colony_size",
	"archive-size":        "archive_size",
	"parallel":            "parallel",
	"max-iterations":      "max_iterations",
	"stagnation":          "stagnation",
	"evaporation":         "evaporation",
	"p-best":              "p_best",
	"convergence":         "convergence",
	"influence":           "influence",
	"precision":           "precision",
	"min-cases":           "min_cases",
	"uncovered":           "uncovered",
	"initial-pheromone":   "initial_pheromone",
	"seed":                "seed",
	"ordered":             "ordered",
	"prune-list":          "prune_list",
	"pruner":              "pruner",
	"heuristic":           "heuristic",
	"rule-quality":        "rule_quality",
	"list-quality":        "list_quality",
	"conflict-resolution": "conflict_resolution",
	"policy":              "policy",
	"construction":        "construction",
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "antminer",
		Short: "Ant colony rule induction",
		Long: `antminer induces classification and regression rule lists with
ant colony optimization: one colony run per rule, sequential covering
over the training instances.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "YAML config file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	addOptionFlags(pf)
	for flag, key := range optionFlags {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newTrainCmd(v), newConfigCmd(v))

	return root
}

// addOptionFlags registers one flag per overridable option with the
// default of config.DefaultOptions.
func addOptionFlags(fs *pflag.FlagSet) {
	d := config.DefaultOptions()
	fs.Int("colony-size", d.ColonySize, "ants per iteration")
	fs.Int("archive-size", d.ArchiveSize, "capacity of each variable archive")
	fs.Int("parallel", d.Parallel, "ants running at once (0 = all CPUs)")
	fs.Int("max-iterations", d.MaxIterations, "colony iterations per rule")
	fs.Int("stagnation", d.Stagnation, "iterations without improvement before a colony stops")
	fs.Float64("evaporation", d.Evaporation, "pheromone evaporation factor in (0,1)")
	fs.Float64("p-best", d.PBest, "MAX-MIN probability of rebuilding the best rule")
	fs.Float64("convergence", d.Convergence, "archive convergence speed (xi)")
	fs.Float64("influence", d.Influence, "archive influence of the best solutions (q)")
	fs.Float64("precision", d.Precision, "smallest quality gain that counts as an improvement")
	fs.Int("min-cases", d.MinCases, "minimum instances covered by a rule")
	fs.Float64("uncovered", d.Uncovered, "stop once this fraction of instances is left")
	fs.Float64("initial-pheromone", d.InitialPheromone, "pheromone of every edge at the start of a colony run")
	fs.Int64("seed", d.Seed, "random seed (0 = fixed default)")
	fs.Bool("ordered", d.Ordered, "build a decision list instead of a rule set")
	fs.Bool("prune-list", d.PruneList, "drop trailing rules that do not help")
	fs.String("pruner", d.Pruner, "none, single-pass, backtrack or greedy")
	fs.String("heuristic", d.Heuristic, "none, entropy or dynamic-entropy")
	fs.String("rule-quality", d.RuleQuality, "sensitivity-specificity, laplace, m-estimate or regression-fit")
	fs.String("list-quality", d.ListQuality, "accuracy or rmse")
	fs.String("conflict-resolution", d.ConflictResolution, "confidence or frequency-sum (unordered rule sets)")
	fs.String("policy", d.Policy, "max-min, level or archive")
	fs.String("construction", d.Construction, "discretization or archive")
}

// loadOptions resolves the options of cmd: defaults, config file,
// environment, flags.
func loadOptions(cmd *cobra.Command, v *viper.Viper) (config.Options, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Options{}, err
	}

	return config.Load(v, path)
}

// newLogger returns a text logger on w at the level named by the
// log-level flag.
func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	name, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", name, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
