// Package samplesize computes per-group sample sizes for two-group A/B tests
// and turns them into recruitment totals and test durations.
package samplesize

import (
	"math"

	"github.com/sells-group/abtest-planner/internal/normal"
)

// Design holds the test parameters shared by both formulas.
type Design struct {
	Alpha float64      `json:"alpha"`
	Power float64      `json:"power"`
	Tails normal.Tails `json:"tails"`
	Ratio float64      `json:"ratio"` // variation size / control size
}

func (d Design) validate() error {
	if err := checkTest(d.Alpha, d.Power, d.Tails); err != nil {
		return err
	}
	return checkPositive("ratio", d.Ratio)
}

func checkTest(alpha, power float64, tails normal.Tails) error {
	if err := checkProbability("alpha", alpha); err != nil {
		return err
	}
	if err := checkProbability("power", power); err != nil {
		return err
	}
	if !tails.Valid() {
		return domainErr("tails", float64(tails), "must be 1 or 2")
	}
	return nil
}

// CriticalValues returns z_α and z_β for a test design. Out-of-range alpha,
// power or tails are reported as a DomainError.
func CriticalValues(alpha, power float64, tails normal.Tails) (zAlpha, zBeta float64, err error) {
	if err := checkTest(alpha, power, tails); err != nil {
		return 0, 0, err
	}
	if zAlpha, err = normal.CriticalValue(alpha, tails); err != nil {
		return 0, 0, err
	}
	if zBeta, err = normal.PowerCriticalValue(power); err != nil {
		return 0, 0, err
	}
	return zAlpha, zBeta, nil
}

// Raw is an unrounded per-group sample size.
type Raw struct {
	NA    float64 `json:"n_a"`
	NB    float64 `json:"n_b"`
	Total float64 `json:"total"`
}

// ProportionParams are the inputs of the two-proportion formula.
type ProportionParams struct {
	PA float64 `json:"p_a"`
	PB float64 `json:"p_b"`
	Design
}

// Proportions computes group sizes for detecting a difference between two
// conversion rates using the unpooled-variance normal approximation.
//
// Equal rates are not an error: no effect needs no sample, so the zero Raw
// is returned.
func Proportions(in ProportionParams) (Raw, error) {
	if err := checkProbability("p_a", in.PA); err != nil {
		return Raw{}, err
	}
	if err := checkProbability("p_b", in.PB); err != nil {
		return Raw{}, err
	}
	if err := in.Design.validate(); err != nil {
		return Raw{}, err
	}

	delta := math.Abs(in.PB - in.PA)
	if delta == 0 {
		return Raw{}, nil
	}

	zAlpha, zBeta, err := CriticalValues(in.Alpha, in.Power, in.Tails)
	if err != nil {
		return Raw{}, err
	}
	r := in.Ratio
	qA := 1 - in.PA
	qB := 1 - in.PB

	termAlpha := zAlpha * math.Sqrt(in.PA*qA*(1+1/r))
	termBeta := zBeta * math.Sqrt(in.PA*qA+(in.PB*qB)/r)
	s := termAlpha + termBeta
	nA := (s * s) / (delta * delta)

	return split(nA, r), nil
}

// MeanParams are the inputs of the two-mean formula. Delta is |meanB - meanA|.
type MeanParams struct {
	SDA   float64 `json:"sd_a"`
	SDB   float64 `json:"sd_b"`
	Delta float64 `json:"delta"`
	Design
}

// Means computes group sizes for detecting a difference between two means
// with per-group standard deviations.
//
// Unlike Proportions there is no zero-effect case: Delta == 0 would divide by
// zero, so it is rejected with a DomainError.
func Means(in MeanParams) (Raw, error) {
	if err := checkPositive("sd_a", in.SDA); err != nil {
		return Raw{}, err
	}
	if err := checkPositive("sd_b", in.SDB); err != nil {
		return Raw{}, err
	}
	if !finite(in.Delta) || in.Delta < 0 {
		return Raw{}, domainErr("delta", in.Delta, "must be a non-negative finite number")
	}
	if in.Delta == 0 {
		return Raw{}, domainErr("delta", in.Delta, "zero difference between means has no finite sample size")
	}
	if err := in.Design.validate(); err != nil {
		return Raw{}, err
	}

	zAlpha, zBeta, err := CriticalValues(in.Alpha, in.Power, in.Tails)
	if err != nil {
		return Raw{}, err
	}
	r := in.Ratio
	z := zAlpha + zBeta

	nA := (z * z) * (in.SDA*in.SDA + (in.SDB*in.SDB)/r) / (in.Delta * in.Delta)

	return split(nA, r), nil
}

func split(nA, r float64) Raw {
	nB := r * nA
	return Raw{NA: nA, NB: nB, Total: nA + nB}
}
