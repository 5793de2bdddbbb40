package zerocurve

import (
	"iter"

	"github.com/meenmo/zerocurve/utils"
)

const (
	// MonthsPerYear converts year fractions to the curve's month tenors.
	MonthsPerYear = 12.0

	DefaultHorizonDays   = 5400
	DefaultDaysPerYear   = 365.0
	DefaultTenorDecimals = 3

	// MaxTenorDecimals is the finest tenor rounding a float64 month count can hold.
	MaxTenorDecimals = 15
)

// Grid describes the daily query grid. Day d is queried at
// d*MonthsPerYear/DaysPerYear months, rounded half-even to TenorDecimals
// (no rounding when TenorDecimals is negative).
type Grid struct {
	Days          int
	DaysPerYear   float64
	TenorDecimals int
}

// DefaultGrid is 5400 days on an ACT/365 basis with 3-decimal tenors.
func DefaultGrid() Grid {
	return Grid{
		Days:          DefaultHorizonDays,
		DaysPerYear:   DefaultDaysPerYear,
		TenorDecimals: DefaultTenorDecimals,
	}
}

// Validate checks the grid parameters.
func (g Grid) Validate() error {
	const op = "ResampleDaily"
	if g.Days < 1 {
		return invalid(op, -1, "day count %d must be at least 1", g.Days)
	}
	if !isFinite(g.DaysPerYear) || g.DaysPerYear <= 0 {
		return invalid(op, -1, "days per year %v must be finite and positive", g.DaysPerYear)
	}
	if g.TenorDecimals > MaxTenorDecimals {
		return invalid(op, -1, "tenor decimals %d exceed %d", g.TenorDecimals, MaxTenorDecimals)
	}
	return nil
}

// Tenor converts a day on the grid to months.
func (g Grid) Tenor(day int) float64 {
	return DaysToTenor(day, g.DaysPerYear, g.TenorDecimals)
}

// Samples lazily evaluates the curve on every grid day. The sequence is
// restartable and stops after the first error.
func (g Grid) Samples(c *Curve) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		if err := g.Validate(); err != nil {
			yield(Sample{}, err)
			return
		}
		for d := 1; d <= g.Days; d++ {
			rate, err := c.Evaluate(g.Tenor(d))
			if err != nil {
				yield(Sample{}, err)
				return
			}
			if !yield(Sample{Day: d, Rate: rate}, nil) {
				return
			}
		}
	}
}

// Resample collects Samples. Either every day is returned or none.
func (g Grid) Resample(c *Curve) ([]Sample, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	out := make([]Sample, 0, g.Days)
	for s, err := range g.Samples(c) {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ResampleDaily evaluates c for days 1..dayCount with the default tenor rounding.
func ResampleDaily(c *Curve, dayCount int, daysPerYear float64) ([]Sample, error) {
	return Grid{Days: dayCount, DaysPerYear: daysPerYear, TenorDecimals: DefaultTenorDecimals}.Resample(c)
}

// DaysToTenor converts a day count to months, rounded half-even to decimals
// when decimals is non-negative.
func DaysToTenor(days int, daysPerYear float64, decimals int) float64 {
	tenor := float64(days) * MonthsPerYear / daysPerYear
	if decimals < 0 {
		return tenor
	}
	return utils.RoundHalfEven(tenor, uint32(decimals))
}
