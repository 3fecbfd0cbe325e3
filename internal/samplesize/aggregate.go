package samplesize

import "math"

// Options control how a raw per-group size is turned into a recruitment plan.
type Options struct {
	Variations   int     `json:"variations"`    // treatment arms compared against one control
	Bonferroni   bool    `json:"bonferroni"`    // divide alpha by Variations before sizing
	Dropoff      float64 `json:"dropoff"`       // expected fraction lost before completion, [0,1)
	DailyTraffic float64 `json:"daily_traffic"` // subjects per day; 0 means unknown
}

func (o Options) validate() error {
	if o.Variations < 1 {
		return domainErr("variations", float64(o.Variations), "must be at least 1")
	}
	if !finite(o.Dropoff) || o.Dropoff < 0 || o.Dropoff >= 1 {
		return domainErr("dropoff", o.Dropoff, "must be in [0, 1)")
	}
	return checkNonNegative("daily_traffic", o.DailyTraffic)
}

// EffectiveAlpha returns the significance level to feed into the formulas. With
// Bonferroni enabled the family-wise alpha is split across the variations.
func (o Options) EffectiveAlpha(alpha float64) float64 {
	if o.Bonferroni && o.Variations > 1 {
		return alpha / float64(o.Variations)
	}
	return alpha
}

// Summary is a rounded recruitment plan with its duration.
type Summary struct {
	NControl      int64 `json:"n_control"`
	NPerVariation int64 `json:"n_per_variation"`
	Subtotal      int64 `json:"subtotal"` // NControl + NPerVariation*Variations

	NControlAdjusted      int64 `json:"n_control_adjusted"`
	NPerVariationAdjusted int64 `json:"n_per_variation_adjusted"`
	TotalAdjusted         int64 `json:"total_adjusted"`

	// Total is TotalAdjusted when drop-off is expected, Subtotal otherwise.
	Total       int64   `json:"total"`
	DaysNeeded  float64 `json:"days_needed"`
	WeeksNeeded float64 `json:"weeks_needed"`
}

// Aggregate rounds raw group sizes up, multiplies the variation arm by the
// number of variations, inflates for drop-off and converts the total into a
// duration at the given daily traffic.
//
// Bonferroni has no effect here; callers apply Options.EffectiveAlpha before sizing.
func Aggregate(raw Raw, opts Options) (Summary, error) {
	if err := checkNonNegative("n_a", raw.NA); err != nil {
		return Summary{}, err
	}
	if err := checkNonNegative("n_b", raw.NB); err != nil {
		return Summary{}, err
	}
	if err := opts.validate(); err != nil {
		return Summary{}, err
	}

	k := int64(opts.Variations)
	var s Summary
	var err error
	if s.NControl, err = roundUp("n_a", raw.NA); err != nil {
		return Summary{}, err
	}
	if s.NPerVariation, err = roundUp("n_b", raw.NB); err != nil {
		return Summary{}, err
	}
	if s.Subtotal, err = groupTotal(s.NControl, s.NPerVariation, k); err != nil {
		return Summary{}, err
	}

	if opts.Dropoff > 0 {
		keep := 1 - opts.Dropoff
		if s.NControlAdjusted, err = roundUp("n_a", float64(s.NControl)/keep); err != nil {
			return Summary{}, err
		}
		if s.NPerVariationAdjusted, err = roundUp("n_b", float64(s.NPerVariation)/keep); err != nil {
			return Summary{}, err
		}
		if s.TotalAdjusted, err = groupTotal(s.NControlAdjusted, s.NPerVariationAdjusted, k); err != nil {
			return Summary{}, err
		}
		s.Total = s.TotalAdjusted
	} else {
		s.NControlAdjusted = s.NControl
		s.NPerVariationAdjusted = s.NPerVariation
		s.TotalAdjusted = s.Subtotal
		s.Total = s.Subtotal
	}

	if opts.DailyTraffic > 0 {
		s.DaysNeeded = float64(s.Total) / opts.DailyTraffic
	}
	s.WeeksNeeded = s.DaysNeeded / 7

	return s, nil
}

// maxCount is 2^63: float64 values at or above it do not fit in an int64.
const maxCount = float64(math.MaxInt64)

// roundUp rounds a group size up to a whole subject count, flooring at zero.
func roundUp(param string, x float64) (int64, error) {
	c := math.Max(0, math.Ceil(x))
	if c >= maxCount {
		return 0, domainErr(param, x, "sample size exceeds the countable range")
	}
	return int64(c), nil
}

// groupTotal returns control + perVariation*k for non-negative counts and
// k >= 1, failing instead of wrapping.
func groupTotal(control, perVariation, k int64) (int64, error) {
	if perVariation > (math.MaxInt64-control)/k {
		total := float64(control) + float64(perVariation)*float64(k)
		return 0, domainErr("total", total, "sample size exceeds the countable range")
	}
	return control + perVariation*k, nil
}
