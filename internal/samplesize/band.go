package samplesize

import (
	"fmt"
	"math"
)

// Band classifies a significance level.
type Band string

const (
	BandConservative Band = "conservative" // alpha <= 1%
	BandStandard     Band = "standard"     // alpha <= 5%
	BandLiberal      Band = "liberal"      // alpha > 5%
)

// BandFor returns the band of a (pre-correction) significance level.
func BandFor(alpha float64) Band {
	switch {
	case alpha <= 0.01:
		return BandConservative
	case alpha <= 0.05:
		return BandStandard
	default:
		return BandLiberal
	}
}

// AdvisoryKind identifies a duration advisory.
type AdvisoryKind string

const (
	AdvisoryShortTest AdvisoryKind = "short_test"
	AdvisoryLongTest  AdvisoryKind = "long_test"
	AdvisoryNoTraffic AdvisoryKind = "no_traffic"
)

const (
	shortTestDays = 7
	longTestDays  = 28
)

// Advisory is a human-readable note about a planned test's duration.
type Advisory struct {
	Kind    AdvisoryKind `json:"kind"`
	Message string       `json:"message"`
}

// Advise returns duration advisories for a summary at the given daily traffic.
func Advise(s Summary, dailyTraffic float64) []Advisory {
	if dailyTraffic <= 0 {
		return []Advisory{{
			Kind:    AdvisoryNoTraffic,
			Message: "set average daily traffic to estimate test duration",
		}}
	}

	var out []Advisory
	if s.DaysNeeded < shortTestDays {
		out = append(out, Advisory{
			Kind:    AdvisoryShortTest,
			Message: "tests shorter than one week may miss weekly patterns and day-of-week effects",
		})
	}
	if s.DaysNeeded > longTestDays {
		out = append(out, Advisory{
			Kind: AdvisoryLongTest,
			Message: fmt.Sprintf("a %.0f-day test is long; consider more traffic allocation or a larger MDE",
				math.Ceil(s.DaysNeeded)),
		})
	}
	return out
}
