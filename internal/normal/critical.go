package normal

import (
	"fmt"
	"math"
)

// Tails is the number of rejection regions of a hypothesis test.
type Tails int

const (
	OneTailed Tails = 1
	TwoTailed Tails = 2
)

// Valid reports whether t is one- or two-tailed.
func (t Tails) Valid() bool {
	return t == OneTailed || t == TwoTailed
}

func (t Tails) String() string {
	switch t {
	case OneTailed:
		return "one-tailed"
	case TwoTailed:
		return "two-tailed"
	default:
		return fmt.Sprintf("tails(%d)", int(t))
	}
}

// ArgumentError reports a critical-value argument outside its domain.
type ArgumentError struct {
	Param string
	Value float64
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("normal: %s=%v out of range", e.Param, e.Value)
}

func openUnit(param string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return &ArgumentError{Param: param, Value: v}
	}
	return nil
}

// CriticalValue returns z_α: the quantile at 1-α/2 for two-tailed tests and
// at 1-α for one-tailed tests. alpha must lie in (0, 1).
func CriticalValue(alpha float64, tails Tails) (float64, error) {
	if err := openUnit("alpha", alpha); err != nil {
		return 0, err
	}
	switch tails {
	case TwoTailed:
		return Quantile(1 - alpha/2), nil
	case OneTailed:
		return Quantile(1 - alpha), nil
	default:
		return 0, &ArgumentError{Param: "tails", Value: float64(tails)}
	}
}

// PowerCriticalValue returns z_β, the quantile at the requested power, which
// must lie in (0, 1).
func PowerCriticalValue(power float64) (float64, error) {
	if err := openUnit("power", power); err != nil {
		return 0, err
	}
	return Quantile(power), nil
}
