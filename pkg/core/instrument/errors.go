package instrument

import (
	"fmt"
	"math"
)

// ValuationError reports a numeric domain fault or malformed input field.
// Callers surface it as a client error naming Field.
type ValuationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValuationError) Error() string {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Sprintf("VALUATION_ERROR: %s: %s (non-finite)", e.Field, e.Reason)
	}
	return fmt.Sprintf("VALUATION_ERROR: %s: %s (got %g)", e.Field, e.Reason, e.Value)
}

func newValuationError(field string, value float64, reason string) *ValuationError {
	return &ValuationError{Field: field, Value: value, Reason: reason}
}

// checkFinite guards against NaN/Inf leaking into results
func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newValuationError(field, v, "must be a finite number")
	}
	return nil
}

func checkPositive(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return newValuationError(field, v, "must be greater than zero")
	}
	return nil
}

func checkProbability(field string, p float64) error {
	if err := checkFinite(field, p); err != nil {
		return err
	}
	if p < 0 || p > 1 {
		return newValuationError(field, p, "probability must be within [0, 1]")
	}
	return nil
}

// val dereferences an optional field
func val(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func floatPtr(f float64) *float64 { return &f }
