package samplesize

import (
	"math"

	"github.com/sells-group/abtest-planner/internal/normal"
)

// Metric selects the sample-size formula.
type Metric string

const (
	MetricProportion Metric = "proportion"
	MetricMean       Metric = "mean"
)

// EffectType selects how an MDE is applied to the control value.
type EffectType string

const (
	EffectRelative EffectType = "relative" // variation = control * (1 + mde)
	EffectAbsolute EffectType = "absolute" // variation = control + mde
)

// Apply returns the variation value implied by an MDE on top of control.
func (t EffectType) Apply(control, mde float64) float64 {
	if t == EffectAbsolute {
		return control + mde
	}
	return control * (1 + mde)
}

// Scenario is one complete set of planning inputs.
//
// For proportions the variation rate is derived from Baseline and Effect.
// For means MeanA and MeanB are used as given.
type Scenario struct {
	Name   string `json:"name,omitempty"`
	Metric Metric `json:"metric"`

	Baseline   float64    `json:"baseline,omitempty"`
	Effect     float64    `json:"effect,omitempty"`
	EffectType EffectType `json:"effect_type,omitempty"`

	MeanA float64 `json:"mean_a,omitempty"`
	MeanB float64 `json:"mean_b,omitempty"`
	SDA   float64 `json:"sd_a,omitempty"`
	SDB   float64 `json:"sd_b,omitempty"`

	Design
	Options
}

// WithEffect returns a copy of s sized for the given MDE. For means the MDE
// moves MeanB relative to MeanA.
func (s Scenario) WithEffect(mde float64) Scenario {
	s.Effect = mde
	if s.Metric == MetricMean {
		s.MeanB = s.EffectType.Apply(s.MeanA, mde)
	}
	return s
}

// Result is an evaluated Scenario.
type Result struct {
	Scenario  Scenario `json:"scenario"`
	AlphaUsed float64  `json:"alpha_used"`

	// Control and variation values: rates for proportions, means for means.
	Control   float64 `json:"control"`
	Variation float64 `json:"variation"`
	MDE       float64 `json:"mde"` // absolute difference in metric units

	Raw Raw `json:"raw"`
	Summary

	Band       Band       `json:"band"`
	Advisories []Advisory `json:"advisories,omitempty"`
}

// Evaluate runs a scenario end to end: Bonferroni-adjusted alpha, formula,
// rounding, drop-off inflation and duration.
func Evaluate(s Scenario) (Result, error) {
	if err := s.Options.validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		Scenario:  s,
		AlphaUsed: s.EffectiveAlpha(s.Alpha),
		Band:      BandFor(s.Alpha),
	}
	design := s.Design
	design.Alpha = res.AlphaUsed

	var err error
	switch s.Metric {
	case MetricProportion, "":
		res.Control = s.Baseline
		res.Variation = s.EffectType.Apply(s.Baseline, s.Effect)
		res.Raw, err = Proportions(ProportionParams{PA: res.Control, PB: res.Variation, Design: design})
	case MetricMean:
		res.Control = s.MeanA
		res.Variation = s.MeanB
		res.Raw, err = Means(MeanParams{SDA: s.SDA, SDB: s.SDB, Delta: math.Abs(s.MeanB - s.MeanA), Design: design})
	default:
		return Result{}, &DomainError{Param: "metric", Value: math.NaN(), Reason: "unknown metric " + string(s.Metric)}
	}
	if err != nil {
		return Result{}, err
	}
	res.MDE = math.Abs(res.Variation - res.Control)

	res.Summary, err = Aggregate(res.Raw, s.Options)
	if err != nil {
		return Result{}, err
	}
	res.Advisories = Advise(res.Summary, s.DailyTraffic)

	return res, nil
}

// DefaultScenario returns the planner's starting inputs: a 5% baseline with
// a 5% relative lift, two variations with Bonferroni, 100k daily visitors.
func DefaultScenario() Scenario {
	return Scenario{
		Metric:     MetricProportion,
		Baseline:   0.05,
		Effect:     0.05,
		EffectType: EffectRelative,
		MeanA:      100,
		MeanB:      105,
		SDA:        15,
		SDB:        15,
		Design: Design{
			Alpha: 0.05,
			Power: 0.8,
			Tails: normal.TwoTailed,
			Ratio: 1,
		},
		Options: Options{
			Variations:   2,
			Bonferroni:   true,
			DailyTraffic: 100000,
		},
	}
}
