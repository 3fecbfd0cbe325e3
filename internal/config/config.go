package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/abtest-planner/internal/normal"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// Config holds the full application configuration.
type Config struct {
	Plan   PlanConfig   `yaml:"plan" mapstructure:"plan"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PlanConfig holds the default planning inputs used when a command or plan
// file leaves a value unset.
type PlanConfig struct {
	Metric       string  `yaml:"metric" mapstructure:"metric"`
	Alpha        float64 `yaml:"alpha" mapstructure:"alpha"`
	Power        float64 `yaml:"power" mapstructure:"power"`
	Tails        int     `yaml:"tails" mapstructure:"tails"`
	Ratio        float64 `yaml:"ratio" mapstructure:"ratio"`
	Variations   int     `yaml:"variations" mapstructure:"variations"`
	Bonferroni   bool    `yaml:"bonferroni" mapstructure:"bonferroni"`
	Dropoff      float64 `yaml:"dropoff" mapstructure:"dropoff"`
	DailyTraffic float64 `yaml:"daily_traffic" mapstructure:"daily_traffic"`
	Baseline     float64 `yaml:"baseline" mapstructure:"baseline"`
	Effect       float64 `yaml:"effect" mapstructure:"effect"`
	EffectType   string  `yaml:"effect_type" mapstructure:"effect_type"`
	MeanA        float64 `yaml:"mean_a" mapstructure:"mean_a"`
	MeanB        float64 `yaml:"mean_b" mapstructure:"mean_b"`
	SDA          float64 `yaml:"sd_a" mapstructure:"sd_a"`
	SDB          float64 `yaml:"sd_b" mapstructure:"sd_b"`
	SweepAlphas  string  `yaml:"sweep_alphas" mapstructure:"sweep_alphas"`
	SweepEffects string  `yaml:"sweep_effects" mapstructure:"sweep_effects"`
}

// Scenario converts the configured defaults into a planning scenario.
func (p PlanConfig) Scenario() samplesize.Scenario {
	return samplesize.Scenario{
		Metric:     samplesize.Metric(p.Metric),
		Baseline:   p.Baseline,
		Effect:     p.Effect,
		EffectType: samplesize.EffectType(p.EffectType),
		MeanA:      p.MeanA,
		MeanB:      p.MeanB,
		SDA:        p.SDA,
		SDB:        p.SDB,
		Design: samplesize.Design{
			Alpha: p.Alpha,
			Power: p.Power,
			Tails: normal.Tails(p.Tails),
			Ratio: p.Ratio,
		},
		Options: samplesize.Options{
			Variations:   p.Variations,
			Bonferroni:   p.Bonferroni,
			Dropoff:      p.Dropoff,
			DailyTraffic: p.DailyTraffic,
		},
	}
}

// BatchConfig configures plan-file evaluation.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ABPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("plan.metric", string(samplesize.MetricProportion))
	v.SetDefault("plan.alpha", 0.05)
	v.SetDefault("plan.power", 0.8)
	v.SetDefault("plan.tails", 2)
	v.SetDefault("plan.ratio", 1.0)
	v.SetDefault("plan.variations", 2)
	v.SetDefault("plan.bonferroni", true)
	v.SetDefault("plan.dropoff", 0.0)
	v.SetDefault("plan.daily_traffic", 100000.0)
	v.SetDefault("plan.baseline", 0.05)
	v.SetDefault("plan.effect", 0.05)
	v.SetDefault("plan.effect_type", string(samplesize.EffectRelative))
	v.SetDefault("plan.mean_a", 100.0)
	v.SetDefault("plan.mean_b", 105.0)
	v.SetDefault("plan.sd_a", 15.0)
	v.SetDefault("plan.sd_b", 15.0)
	v.SetDefault("plan.sweep_alphas", "1, 5, 10")
	v.SetDefault("plan.sweep_effects", "1, 3, 5, 8")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given command mode
// ("plan" or "serve") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "plan":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate limiting is enabled")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
		errs = append(errs, fmt.Sprintf("batch.max_concurrent must be between 1 and 64, got %d", c.Batch.MaxConcurrent))
	}
	if !normal.Tails(c.Plan.Tails).Valid() {
		errs = append(errs, fmt.Sprintf("plan.tails must be 1 or 2, got %d", c.Plan.Tails))
	}
	switch samplesize.Metric(c.Plan.Metric) {
	case samplesize.MetricProportion, samplesize.MetricMean:
	default:
		errs = append(errs, fmt.Sprintf("plan.metric must be %q or %q", samplesize.MetricProportion, samplesize.MetricMean))
	}
	switch samplesize.EffectType(c.Plan.EffectType) {
	case samplesize.EffectRelative, samplesize.EffectAbsolute:
	default:
		errs = append(errs, fmt.Sprintf("plan.effect_type must be %q or %q", samplesize.EffectRelative, samplesize.EffectAbsolute))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
