package samplesize

import (
	"errors"
	"fmt"
	"math"
)

// DomainError reports an input outside the domain of a sample-size formula.
type DomainError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("samplesize: %s=%v: %s", e.Param, e.Value, e.Reason)
}

// IsDomainError returns true if err (or any error in its chain) is a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func domainErr(param string, v float64, reason string) *DomainError {
	return &DomainError{Param: param, Value: v, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkProbability requires 0 < v < 1.
func checkProbability(param string, v float64) error {
	if !finite(v) || v <= 0 || v >= 1 {
		return domainErr(param, v, "must be strictly between 0 and 1")
	}
	return nil
}

func checkPositive(param string, v float64) error {
	if !finite(v) || v <= 0 {
		return domainErr(param, v, "must be a positive finite number")
	}
	return nil
}

func checkNonNegative(param string, v float64) error {
	if !finite(v) || v < 0 {
		return domainErr(param, v, "must be a non-negative finite number")
	}
	return nil
}
