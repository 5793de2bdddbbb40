// Package zerocurve builds a zero-coupon yield curve from (tenor, yield)
// observations by cubic-spline interpolation and resamples it on a daily grid.
//
// Tenors are expressed in months. The default curve uses not-a-knot end
// conditions and extrapolates with the boundary cubic segments.
package zerocurve

import (
	"github.com/meenmo/zerocurve/spline"
)

// Options fixes the spline conventions of a curve.
type Options struct {
	Boundary      spline.Boundary
	Extrapolation spline.Extrapolation
}

// DefaultOptions are the conventions of the published rate tables:
// not-a-knot end conditions and cubic extrapolation.
var DefaultOptions = Options{
	Boundary:      spline.NotAKnot,
	Extrapolation: spline.ExtrapolateCubic,
}

// Curve is an immutable yield curve. It is safe for concurrent use.
type Curve struct {
	observations []Observation
	spline       *spline.Spline
}

// Construct builds a curve with DefaultOptions.
func Construct(observations []Observation) (*Curve, error) {
	return ConstructWith(observations, DefaultOptions)
}

// ConstructWith builds a curve through every observation. Observations must be
// sorted by strictly increasing tenor; at least two are required.
func ConstructWith(observations []Observation, opts Options) (*Curve, error) {
	const op = "Construct"

	if len(observations) < 2 {
		return nil, invalid(op, -1, "need at least 2 observations, got %d", len(observations))
	}

	xs := make([]float64, len(observations))
	ys := make([]float64, len(observations))
	for i, o := range observations {
		if err := o.validate(op, i); err != nil {
			return nil, err
		}
		if i > 0 && !(o.Tenor > observations[i-1].Tenor) {
			return nil, invalid(op, i, "tenor %v is not greater than previous tenor %v", o.Tenor, observations[i-1].Tenor)
		}
		xs[i] = o.Tenor
		ys[i] = o.Yield
	}

	s, err := spline.New(xs, ys, opts.Boundary, opts.Extrapolation)
	if err != nil {
		return nil, &InvalidInputError{Op: op, Index: -1, Reason: "spline construction failed", Err: err}
	}

	return &Curve{
		observations: append([]Observation(nil), observations...),
		spline:       s,
	}, nil
}

// Evaluate returns the curve rate at tenor (months).
func (c *Curve) Evaluate(tenor float64) (float64, error) {
	if !isFinite(tenor) {
		return 0, invalid("Evaluate", -1, "query tenor %v is not finite", tenor)
	}
	return c.spline.At(tenor), nil
}

// Evaluate is the free-function form of (*Curve).Evaluate.
func Evaluate(c *Curve, tenor float64) (float64, error) {
	return c.Evaluate(tenor)
}

// Slope returns the first derivative of the curve at tenor.
func (c *Curve) Slope(tenor float64) (float64, error) {
	if !isFinite(tenor) {
		return 0, invalid("Slope", -1, "query tenor %v is not finite", tenor)
	}
	return c.spline.Derivative(tenor, 1), nil
}

// Observations returns a copy of the knots the curve was built from.
func (c *Curve) Observations() []Observation {
	return append([]Observation(nil), c.observations...)
}

// Range returns the smallest and largest observed tenor.
func (c *Curve) Range() (float64, float64) {
	return c.spline.Domain()
}

// Boundary returns the spline end conditions.
func (c *Curve) Boundary() spline.Boundary {
	return c.spline.Boundary()
}

// Extrapolation returns the policy used outside Range.
func (c *Curve) Extrapolation() spline.Extrapolation {
	return c.spline.Extrapolation()
}
