package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/abtest-planner/internal/plan"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// execute runs the root command with args after resetting every flag, since
// cobra keeps flag state between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"calc", "sweep", "batch", "z", "selfcheck", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "abplan", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_InvalidConfigFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile("config.yaml", []byte("plan: [unclosed"), 0o644))

	_, err = execute(t, "selfcheck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestCalcCommand_Flags(t *testing.T) {
	for _, name := range []string{"metric", "baseline", "effect", "effect-type", "mean-a", "mean-b",
		"sd-a", "sd-b", "alpha", "power", "tails", "ratio", "variations", "bonferroni",
		"dropoff", "traffic", "format", "plain"} {
		assert.NotNil(t, calcCmd.Flags().Lookup(name), "calc should have --%s flag", name)
	}
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)

	flag = batchCmd.Flags().Lookup("concurrency")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCalc_JSON(t *testing.T) {
	out, err := execute(t, "calc", "--format", "json",
		"--baseline", "0.05", "--effect", "0.005", "--effect-type", "absolute",
		"--variations", "1", "--bonferroni=false", "--traffic", "0")
	require.NoError(t, err)

	var res samplesize.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(30245), res.NControl)
	assert.Equal(t, int64(60490), res.Total)
	assert.InDelta(t, 0.05, res.AlphaUsed, 1e-15)
	assert.Zero(t, res.DaysNeeded)
}

func TestCalc_ConfigDefaults(t *testing.T) {
	out, err := execute(t, "calc", "--format", "json")
	require.NoError(t, err)

	var res samplesize.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 0.025, res.AlphaUsed, 1e-15)
	assert.Equal(t, int64(145405), res.NControl)
	assert.Equal(t, int64(436215), res.Total)
}

func TestCalc_Table(t *testing.T) {
	out, err := execute(t, "calc", "--plain", "--name", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "145,405")
}

func TestCalc_DomainError(t *testing.T) {
	_, err := execute(t, "calc", "--metric", "mean", "--mean-a", "100", "--mean-b", "100")
	require.Error(t, err)
	assert.True(t, samplesize.IsDomainError(err))
}

func TestCalc_BadFormat(t *testing.T) {
	_, err := execute(t, "calc", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestSweep_JSON(t *testing.T) {
	out, err := execute(t, "sweep", "--format", "json", "--alphas", "5", "--effects", "5, 8")
	require.NoError(t, err)

	var rows []samplesize.SweepRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(145405), rows[0].NControl)
	assert.Equal(t, int64(436215), rows[0].Total)
	assert.InDelta(t, 0.08, rows[1].Effect, 1e-15)
}

func TestSweep_ConfigLists(t *testing.T) {
	out, err := execute(t, "sweep", "--format", "json")
	require.NoError(t, err)

	var rows []samplesize.SweepRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 12)
}

func TestZ_JSON(t *testing.T) {
	out, err := execute(t, "z", "--format", "json", "--alpha", "0.05", "--tails", "1")
	require.NoError(t, err)

	var v criticalValues
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.InDelta(t, 1.6448536, v.ZAlpha, 1e-6)
	assert.InDelta(t, 0.8416212, v.ZBeta, 1e-6)
}

func TestZ_InvalidTails(t *testing.T) {
	_, err := execute(t, "z", "--tails", "3")
	require.Error(t, err)
	assert.True(t, samplesize.IsDomainError(err))
}

func TestZ_InvalidAlpha(t *testing.T) {
	out, err := execute(t, "z", "--alpha", "5")
	require.Error(t, err)
	assert.True(t, samplesize.IsDomainError(err))
	assert.Contains(t, err.Error(), "alpha")
	assert.NotContains(t, out, "z_alpha (")
}

func TestZ_InvalidPower(t *testing.T) {
	_, err := execute(t, "z", "--power", "80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power")
}

func TestSelfcheck(t *testing.T) {
	out, err := execute(t, "selfcheck", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.NotContains(t, out, "FAIL")
}

func TestBatch_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
defaults:
  variations: 1
  bonferroni: false
scenarios:
  - name: small-lift
    effect: 0.005
    effect_type: absolute
  - name: broken
    baseline: 1.5
  - name: grid
    alphas: "1, 5"
    effects: "3"
`), 0o644))

	out, err := execute(t, "batch", "--plan", path, "--format", "json")
	require.NoError(t, err)

	var outcomes []plan.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 3)

	assert.Equal(t, "small-lift", outcomes[0].Name)
	require.NotNil(t, outcomes[0].Result)
	assert.Equal(t, int64(30245), outcomes[0].Result.NControl)

	assert.Equal(t, "broken", outcomes[1].Name)
	assert.Contains(t, outcomes[1].Error, "p_a")

	assert.Equal(t, "grid", outcomes[2].Name)
	assert.Len(t, outcomes[2].Rows, 2)
}

func TestBatch_Strict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,baseline\nbad,0\n"), 0o644))

	_, err := execute(t, "batch", "--plan", path, "--strict", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestBatch_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,effect\na,0.05\nb,0.1\nc,0.2\n"), 0o644))

	out, err := execute(t, "batch", "--plan", path, "--limit", "2", "--format", "json")
	require.NoError(t, err)

	var outcomes []plan.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	assert.Len(t, outcomes, 2)
}

func TestBatch_MissingPlanFlag(t *testing.T) {
	_, err := execute(t, "batch")
	require.Error(t, err)
}
