package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/config"
)

// TestDefaults_Valid verifies that both default sets validate.
func TestDefaults_Valid(t *testing.T) {
	require.NoError(t, config.DefaultOptions().Validate())
	require.NoError(t, config.RegressionDefaults().Validate())
	require.Equal(t, runtime.NumCPU(), config.DefaultOptions().Workers())

	o := config.DefaultOptions()
	o.Parallel = 3
	require.Equal(t, 3, o.Workers())
}

// TestValidate_Invalid covers out-of-range values, unknown names and the
// archive consistency check.
func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*config.Options)
	}{
		{"colony size", func(o *config.Options) { o.ColonySize = 0 }},
		{"archive size", func(o *config.Options) { o.ArchiveSize = -1 }},
		{"parallel", func(o *config.Options) { o.Parallel = -2 }},
		{"max iterations", func(o *config.Options) { o.MaxIterations = 0 }},
		{"stagnation", func(o *config.Options) { o.Stagnation = 0 }},
		{"evaporation", func(o *config.Options) { o.Evaporation = 1 }},
		{"p_best", func(o *config.Options) { o.PBest = 0 }},
		{"min cases", func(o *config.Options) { o.MinCases = 0 }},
		{"uncovered", func(o *config.Options) { o.Uncovered = 1 }},
		{"initial pheromone", func(o *config.Options) { o.InitialPheromone = 0 }},
		{"pruner", func(o *config.Options) { o.Pruner = "bogus" }},
		{"heuristic", func(o *config.Options) { o.Heuristic = "bogus" }},
		{"rule quality", func(o *config.Options) { o.RuleQuality = "" }},
		{"policy", func(o *config.Options) { o.Policy = "ant-system" }},
		{"archive policy alone", func(o *config.Options) { o.Policy = config.PolicyArchive }},
		{"archive construction alone", func(o *config.Options) { o.Construction = config.ConstructionArchive }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := config.DefaultOptions()
			tc.apply(&o)
			require.ErrorIs(t, o.Validate(), config.ErrInvalidOption)
		})
	}

	o := config.DefaultOptions()
	o.Policy = config.PolicyArchive
	o.Construction = config.ConstructionArchive
	require.NoError(t, o.Validate())
}

// TestLoad_FileAndEnv verifies the precedence defaults < file < env.
func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "antminer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colony_size: 25\nmin_cases: 4\npruner: greedy\n"), 0o600))
	t.Setenv("ANTMINER_MIN_CASES", "7")

	o, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, 25, o.ColonySize)
	require.Equal(t, 7, o.MinCases)
	require.Equal(t, config.PrunerGreedy, o.Pruner)
	require.Equal(t, config.DefaultOptions().Evaporation, o.Evaporation)

	// No file: defaults only.
	o, err = config.Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, config.DefaultOptions().ColonySize, o.ColonySize)
}

// TestLoad_Errors covers a missing file and an invalid value.
func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaporation: 2\n"), 0o600))
	_, err = config.Load(viper.New(), path)
	require.ErrorIs(t, err, config.ErrInvalidOption)
}

// TestWriteParse verifies that a written configuration parses back to the
// same options and that a partial document keeps the defaults.
func TestWriteParse(t *testing.T) {
	o := config.RegressionDefaults()
	o.Seed = 99
	o.Ordered = false

	var buf bytes.Buffer
	require.NoError(t, config.Write(&buf, o))
	require.Contains(t, buf.String(), "rule_quality: regression-fit")

	got, err := config.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, o, got)

	got, err = config.Parse(strings.NewReader("stagnation: 3\n"))
	require.NoError(t, err)
	require.Equal(t, 3, got.Stagnation)
	require.Equal(t, config.DefaultOptions().ColonySize, got.ColonySize)

	got, err = config.Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, config.DefaultOptions(), got)

	_, err = config.Parse(strings.NewReader("colony_size: [1, 2]\n"))
	require.Error(t, err)
}
