package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. ANTMINER_COLONY_SIZE.
const EnvPrefix = "ANTMINER"

// SetDefaults registers every default of DefaultOptions on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultOptions()
	v.SetDefault("colony_size", d.ColonySize)
	v.SetDefault("archive_size", d.ArchiveSize)
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("stagnation", d.Stagnation)
	v.SetDefault("evaporation", d.Evaporation)
	v.SetDefault("p_best", d.PBest)
	v.SetDefault("convergence", d.Convergence)
	v.SetDefault("influence", d.Influence)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("min_cases", d.MinCases)
	v.SetDefault("uncovered", d.Uncovered)
	v.SetDefault("initial_pheromone", d.InitialPheromone)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("ordered", d.Ordered)
	v.SetDefault("prune_list", d.PruneList)
	v.SetDefault("pruner", d.Pruner)
	v.SetDefault("heuristic", d.Heuristic)
	v.SetDefault("rule_quality", d.RuleQuality)
	v.SetDefault("list_quality", d.ListQuality)
	v.SetDefault("conflict_resolution", d.ConflictResolution)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("construction", d.Construction)
}

// Load resolves Options from v: defaults, then the optional config file at
// path, then ANTMINER_* environment variables, then whatever the caller
// already bound on v (flags). The result is validated.
func Load(v *viper.Viper, path string) (Options, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

// Write dumps o as YAML.
func Write(w io.Writer, o Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	return enc.Close()
}

// Parse decodes YAML produced by Write (or written by hand) on top of
// DefaultOptions and validates the result.
func Parse(r io.Reader) (Options, error) {
	o := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&o); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}
