package samplesize

import "github.com/sells-group/abtest-planner/internal/normal"

// Check is the outcome of one built-in sanity check.
type Check struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`
}

// SelfCheck verifies the formula's expected monotonicity on a 5% baseline:
// larger effects need fewer subjects, one-tailed tests need fewer than
// two-tailed, and a 2:1 allocation shrinks control and grows variation.
func SelfCheck() []Check {
	const base = 0.05
	design := Design{Alpha: 0.05, Power: 0.8, Tails: normal.TwoTailed, Ratio: 1}

	size := func(pB float64, d Design) Raw {
		r, err := Proportions(ProportionParams{PA: base, PB: pB, Design: d})
		if err != nil {
			return Raw{NA: -1, NB: -1, Total: -1}
		}
		return r
	}

	small := size(base+0.01, design)
	large := size(base+0.02, design)

	oneTailed := design
	oneTailed.Tails = normal.OneTailed
	one := size(base+0.01, oneTailed)

	skewed := design
	skewed.Ratio = 2
	skew := size(base+0.01, skewed)

	return []Check{
		{Name: "larger MDE needs a smaller sample", Pass: large.Total > 0 && large.Total < small.Total},
		{Name: "one-tailed needs fewer than two-tailed", Pass: one.Total > 0 && one.Total < small.Total},
		{Name: "allocation ratio shifts group sizes", Pass: skew.NA > 0 && skew.NA < small.NA && skew.NB > small.NB},
	}
}
