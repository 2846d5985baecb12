package vapeindex

import "math"

// Sanitize converts numerically degenerate index levels to absent: any
// non-finite value (division by zero, zero lag) or non-positive value
// becomes NaN so it drops out of the chained product instead of aborting
// the run. Applying it to an already-sanitized value is a no-op.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return math.NaN()
	}
	return v
}

// SanitizeLog converts a ±Inf log value to absent. NaN passes through as
// already absent.
func SanitizeLog(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// nanProd multiplies values while skipping absent (NaN) entries. The
// result is absent only when no present entry was seen, matching a
// product aggregation with a minimum count of one.
type nanProd struct {
	product float64
	seen    bool
}

func (p *nanProd) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	if !p.seen {
		p.product = 1
		p.seen = true
	}
	p.product *= v
}

func (p *nanProd) value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.product
}
