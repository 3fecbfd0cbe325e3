package samplesize

import (
	"math"
	"strconv"
	"strings"
)

// ParseAlphaList parses a comma-separated list of significance levels given
// in percent ("1, 5, 10" or "1%, 5%"). Entries that do not parse, or fall
// outside (0,1) once divided by 100, are dropped.
func ParseAlphaList(s string) []float64 {
	return parseList(s, 100, func(v float64) bool { return v > 0 && v < 1 })
}

// ParseEffectList parses a comma-separated list of positive MDEs. Percent
// entries are divided by 100 and may carry a trailing "%"; otherwise values
// are taken in metric units.
// Entries that do not parse or are not positive are dropped.
func ParseEffectList(s string, percent bool) []float64 {
	scale := 1.0
	if percent {
		scale = 100
	}
	return parseList(s, scale, func(v float64) bool { return v > 0 })
}

func parseList(s string, scale float64, keep func(float64) bool) []float64 {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if scale != 1 {
			field = strings.TrimSpace(strings.TrimSuffix(field, "%"))
		}
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		v /= scale
		if !finite(v) || !keep(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// EffectsArePercent reports whether sweep effects for s are entered in
// percent. Absolute lifts on means are in metric units.
func EffectsArePercent(s Scenario) bool {
	return !(s.Metric == MetricMean && s.EffectType == EffectAbsolute)
}

// SweepRow is one (alpha, MDE) cell of a scenario sweep.
type SweepRow struct {
	Alpha      float64 `json:"alpha"`
	Effect     float64 `json:"effect"`
	Control    float64 `json:"control"`
	Variation  float64 `json:"variation"`
	Variations int     `json:"variations"`

	// Group sizes include drop-off inflation when drop-off is expected.
	NControl      int64   `json:"n_control"`
	NPerVariation int64   `json:"n_per_variation"`
	Total         int64   `json:"total"`
	DaysNeeded    int64   `json:"days_needed"` // rounded up
	WeeksNeeded   float64 `json:"weeks_needed"`

	Band  Band   `json:"band"`
	Error string `json:"error,omitempty"`
}

// Sweep evaluates base at every (alpha, effect) pair, alphas outer and
// effects inner, preserving input order. A pair whose derived inputs are out
// of domain yields a row with Error set, so len(result) is always
// len(alphas)*len(effects).
func Sweep(base Scenario, alphas, effects []float64) []SweepRow {
	rows := make([]SweepRow, 0, len(alphas)*len(effects))
	for _, alpha := range alphas {
		for _, mde := range effects {
			s := base.WithEffect(mde)
			s.Alpha = alpha
			rows = append(rows, sweepRow(s))
		}
	}
	return rows
}

func sweepRow(s Scenario) SweepRow {
	row := SweepRow{
		Alpha:      s.Alpha,
		Effect:     s.Effect,
		Variations: s.Variations,
		Band:       BandFor(s.Alpha),
	}

	res, err := Evaluate(s)
	if err != nil {
		row.Error = err.Error()
		return row
	}

	row.Control = res.Control
	row.Variation = res.Variation
	row.NControl = res.NControlAdjusted
	row.NPerVariation = res.NPerVariationAdjusted
	row.Total = res.Total
	row.DaysNeeded = int64(math.Ceil(res.DaysNeeded))
	row.WeeksNeeded = res.DaysNeeded / 7
	return row
}
