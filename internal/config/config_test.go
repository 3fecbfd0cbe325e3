package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/abtest-planner/internal/normal"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.Equal(t, "proportion", cfg.Plan.Metric)
	assert.InDelta(t, 0.05, cfg.Plan.Alpha, 0.0001)
	assert.InDelta(t, 0.8, cfg.Plan.Power, 0.0001)
	assert.Equal(t, 2, cfg.Plan.Tails)
	assert.InDelta(t, 1.0, cfg.Plan.Ratio, 0.0001)
	assert.Equal(t, 2, cfg.Plan.Variations)
	assert.True(t, cfg.Plan.Bonferroni)
	assert.InDelta(t, 100000.0, cfg.Plan.DailyTraffic, 0.001)
	assert.Equal(t, "relative", cfg.Plan.EffectType)
	assert.Equal(t, "1, 5, 10", cfg.Plan.SweepAlphas)
	assert.Equal(t, "1, 3, 5, 8", cfg.Plan.SweepEffects)
	assert.NoError(t, cfg.Validate("plan"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - https://planner.example.com
plan:
  alpha: 0.01
  variations: 3
  bonferroni: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://planner.example.com"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 0.01, cfg.Plan.Alpha, 0.0001)
	assert.Equal(t, 3, cfg.Plan.Variations)
	assert.False(t, cfg.Plan.Bonferroni)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.8, cfg.Plan.Power, 0.0001)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
plan:
  power: 0.9
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ABPLAN_PLAN_POWER", "0.95")
	t.Setenv("ABPLAN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.InDelta(t, 0.95, cfg.Plan.Power, 0.0001)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("ABPLAN_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("plan: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestPlanConfig_Scenario(t *testing.T) {
	p := PlanConfig{
		Metric: "mean", Alpha: 0.05, Power: 0.8, Tails: 1, Ratio: 2,
		Variations: 3, Bonferroni: true, Dropoff: 0.1, DailyTraffic: 500,
		Baseline: 0.1, Effect: 0.2, EffectType: "absolute",
		MeanA: 10, MeanB: 12, SDA: 3, SDB: 4,
	}

	s := p.Scenario()
	assert.Equal(t, samplesize.MetricMean, s.Metric)
	assert.Equal(t, samplesize.EffectAbsolute, s.EffectType)
	assert.Equal(t, normal.OneTailed, s.Tails)
	assert.InDelta(t, 2.0, s.Ratio, 0.0001)
	assert.Equal(t, 3, s.Variations)
	assert.True(t, s.Bonferroni)
	assert.InDelta(t, 0.1, s.Dropoff, 0.0001)
	assert.InDelta(t, 500.0, s.DailyTraffic, 0.0001)
	assert.InDelta(t, 4.0, s.SDB, 0.0001)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Batch.MaxConcurrent = 4
	cfg.Plan.Metric = "proportion"
	cfg.Plan.EffectType = "relative"
	cfg.Plan.Tails = 2
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 20
	cfg.Server.RateBurst = 40
	return cfg
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// Port is irrelevant outside serve mode.
	assert.NoError(t, cfg.Validate("plan"))
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateBurst = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_burst")

	cfg.Server.RateLimit = 0
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.RateLimit = -1
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit must be >= 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrent = 0
	err := cfg.Validate("plan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.max_concurrent must be between 1 and 64")

	cfg.Batch.MaxConcurrent = 65
	err = cfg.Validate("plan")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrent = 64
	assert.NoError(t, cfg.Validate("plan"))
}

func TestValidatePlanDefaults(t *testing.T) {
	cfg := validDefaults()
	cfg.Plan.Tails = 3
	cfg.Plan.Metric = "ratio"
	cfg.Plan.EffectType = "multiplicative"

	err := cfg.Validate("plan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "plan.tails must be 1 or 2")
	assert.Contains(t, err.Error(), "plan.metric")
	assert.Contains(t, err.Error(), "plan.effect_type")
}
