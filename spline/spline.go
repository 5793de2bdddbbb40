// Package spline implements a one-dimensional piecewise cubic interpolant
// that is continuous in value, slope and curvature at every interior knot.
package spline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrTooFewKnots    = errors.New("at least 2 knots are required")
	ErrLengthMismatch = errors.New("xs and ys must have the same length")
	ErrNotIncreasing  = errors.New("knot positions must be strictly increasing")
	ErrNonFinite      = errors.New("knot values must be finite")
)

// Boundary selects the end conditions that close the slope system.
type Boundary int

const (
	// NotAKnot forces the third derivative to be continuous at the second and
	// penultimate knots. With three knots the result is the interpolating
	// parabola, with two the straight line.
	NotAKnot Boundary = iota
	// Natural forces a zero second derivative at both ends.
	Natural
)

func (b Boundary) String() string {
	switch b {
	case NotAKnot:
		return "not-a-knot"
	case Natural:
		return "natural"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary accepts "not-a-knot" (or "notaknot") and "natural".
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "not-a-knot", "notaknot":
		return NotAKnot, nil
	case "natural":
		return Natural, nil
	default:
		return 0, fmt.Errorf("unknown spline boundary %q", s)
	}
}

// Extrapolation selects what At returns outside [xs[0], xs[n-1]].
type Extrapolation int

const (
	// ExtrapolateCubic continues the boundary segment polynomial. It can
	// diverge quickly away from the data.
	ExtrapolateCubic Extrapolation = iota
	// ExtrapolateFlat clamps to the boundary knot value.
	ExtrapolateFlat
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateCubic:
		return "cubic"
	case ExtrapolateFlat:
		return "flat"
	default:
		return fmt.Sprintf("Extrapolation(%d)", int(e))
	}
}

// ParseExtrapolation accepts "cubic" and "flat".
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cubic":
		return ExtrapolateCubic, nil
	case "flat", "clamp":
		return ExtrapolateFlat, nil
	default:
		return 0, fmt.Errorf("unknown extrapolation policy %q", s)
	}
}

// Spline is an immutable cubic interpolant. It holds no caches, so a single
// value may be evaluated from several goroutines.
type Spline struct {
	xs       []float64
	ys       []float64
	coeffs   [][4]float64 // per segment, ascending powers of (x - xs[i])
	boundary Boundary
	extrap   Extrapolation
}

// New builds the spline through (xs[i], ys[i]). The inputs are copied.
func New(xs, ys []float64, boundary Boundary, extrap Extrapolation) (*Spline, error) {
	if err := validate(xs, ys); err != nil {
		return nil, err
	}

	n := len(xs)
	s := &Spline{
		xs:       append([]float64(nil), xs...),
		ys:       append([]float64(nil), ys...),
		boundary: boundary,
		extrap:   extrap,
	}

	dx := make([]float64, n-1)
	slope := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		dx[i] = s.xs[i+1] - s.xs[i]
		slope[i] = (s.ys[i+1] - s.ys[i]) / dx[i]
	}

	d, err := knotSlopes(dx, slope, s.xs, boundary)
	if err != nil {
		return nil, err
	}

	s.coeffs = make([][4]float64, n-1)
	for i := 0; i < n-1; i++ {
		t := (d[i] + d[i+1] - 2*slope[i]) / dx[i]
		s.coeffs[i] = [4]float64{
			s.ys[i],
			d[i],
			(slope[i]-d[i])/dx[i] - t,
			t / dx[i],
		}
	}
	return s, nil
}

func validate(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d xs, %d ys", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewKnots, len(xs))
	}
	for i := range xs {
		if !isFinite(xs[i]) {
			return fmt.Errorf("%w: x[%d]=%v", ErrNonFinite, i, xs[i])
		}
		if !isFinite(ys[i]) {
			return fmt.Errorf("%w: y[%d]=%v", ErrNonFinite, i, ys[i])
		}
		if i > 0 && !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: x[%d]=%v follows x[%d]=%v", ErrNotIncreasing, i, xs[i], i-1, xs[i-1])
		}
	}
	return nil
}

// knotSlopes solves the tridiagonal system for the first derivative at each knot.
//
// Interior row k:
//
//	dx[k]*d[k-1] + 2*(dx[k-1]+dx[k])*d[k] + dx[k-1]*d[k+1] = 3*(dx[k]*m[k-1] + dx[k-1]*m[k])
func knotSlopes(dx, m, xs []float64, boundary Boundary) ([]float64, error) {
	n := len(xs)
	if n == 2 {
		return []float64{m[0], m[0]}, nil
	}

	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)

	for k := 1; k < n-1; k++ {
		sub[k] = dx[k]
		diag[k] = 2 * (dx[k-1] + dx[k])
		sup[k] = dx[k-1]
		rhs[k] = 3 * (dx[k]*m[k-1] + dx[k-1]*m[k])
	}

	switch boundary {
	case Natural:
		diag[0], sup[0] = 2, 1
		rhs[0] = 3 * m[0]
		sub[n-1], diag[n-1] = 1, 2
		rhs[n-1] = 3 * m[n-2]
	case NotAKnot:
		if n == 3 {
			// A single parabola through the three knots.
			diag[0], sup[0] = 1, 1
			rhs[0] = 2 * m[0]
			sub[2], diag[2] = 1, 1
			rhs[2] = 2 * m[1]
			break
		}
		w := xs[2] - xs[0]
		diag[0], sup[0] = dx[1], w
		rhs[0] = ((dx[0]+2*w)*dx[1]*m[0] + dx[0]*dx[0]*m[1]) / w

		w = xs[n-1] - xs[n-3]
		sub[n-1], diag[n-1] = w, dx[n-3]
		rhs[n-1] = (dx[n-2]*dx[n-2]*m[n-3] + (2*w+dx[n-2])*dx[n-3]*m[n-2]) / w
	default:
		return nil, fmt.Errorf("unsupported boundary %v", boundary)
	}

	return solveTridiagonal(sub, diag, sup, rhs)
}

// solveTridiagonal runs the Thomas algorithm. sub[0] and sup[n-1] are ignored.
func solveTridiagonal(sub, diag, sup, rhs []float64) ([]float64, error) {
	n := len(diag)
	c := make([]float64, n)
	d := make([]float64, n)

	if diag[0] == 0 {
		return nil, errors.New("singular slope system")
	}
	c[0] = sup[0] / diag[0]
	d[0] = rhs[0] / diag[0]
	for i := 1; i < n; i++ {
		den := diag[i] - sub[i]*c[i-1]
		if den == 0 {
			return nil, errors.New("singular slope system")
		}
		if i < n-1 {
			c[i] = sup[i] / den
		}
		d[i] = (rhs[i] - sub[i]*d[i-1]) / den
	}

	x := make([]float64, n)
	x[n-1] = d[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = d[i] - c[i]*x[i+1]
	}
	return x, nil
}

// segment returns the index of the polynomial piece used for x. Points below
// the domain map to the first piece and points at or above the last knot map
// to the last piece.
func (s *Spline) segment(x float64) int {
	i := sort.Search(len(s.xs), func(i int) bool {
		return s.xs[i] > x
	}) - 1
	if i < 0 {
		return 0
	}
	if i > len(s.coeffs)-1 {
		return len(s.coeffs) - 1
	}
	return i
}

// At evaluates the spline at x. NaN propagates.
func (s *Spline) At(x float64) float64 {
	return s.Derivative(x, 0)
}

// Derivative evaluates the order-th derivative (0 to 3) at x. Orders above 3
// return 0.
func (s *Spline) Derivative(x float64, order int) float64 {
	if order < 0 {
		order = 0
	}
	if s.extrap == ExtrapolateFlat {
		if x < s.xs[0] {
			if order == 0 {
				return s.ys[0]
			}
			return 0
		}
		if x > s.xs[len(s.xs)-1] {
			if order == 0 {
				return s.ys[len(s.ys)-1]
			}
			return 0
		}
	}

	i := s.segment(x)
	h := x - s.xs[i]
	c := s.coeffs[i]

	res := 0.0
	z := 1.0
	for k := order; k < len(c); k++ {
		res += c[k] * z * fallingFactorial(k, order)
		z *= h
	}
	return res
}

// fallingFactorial returns k*(k-1)*...*(k-order+1).
func fallingFactorial(k, order int) float64 {
	f := 1.0
	for j := 0; j < order; j++ {
		f *= float64(k - j)
	}
	return f
}

// Knots returns copies of the knot positions and values.
func (s *Spline) Knots() ([]float64, []float64) {
	return append([]float64(nil), s.xs...), append([]float64(nil), s.ys...)
}

// Domain returns the first and last knot positions.
func (s *Spline) Domain() (float64, float64) {
	return s.xs[0], s.xs[len(s.xs)-1]
}

// Boundary returns the end conditions the spline was built with.
func (s *Spline) Boundary() Boundary {
	return s.boundary
}

// Extrapolation returns the out-of-domain policy.
func (s *Spline) Extrapolation() Extrapolation {
	return s.extrap
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
