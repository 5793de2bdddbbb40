// Package marketdata loads bond yield snapshots and shapes them into curve
// observations.
package marketdata

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

// ErrNoObservations is returned when a snapshot has no usable rows.
var ErrNoObservations = errors.New("marketdata: no observations for snapshot")

// Record is one raw row of a yield snapshot.
type Record struct {
	Date time.Time
	Days int     // days from Date to maturity
	Flag string  // rows flagged with Filter.SkipFlag are ignored
	Rate float64 // annualized yield
}

// Filter selects the rows of one snapshot and converts their maturities to
// month tenors.
type Filter struct {
	SnapshotDate  time.Time
	SkipFlag      string
	DaysPerYear   float64
	TenorDecimals int
}

// DefaultFilter matches the bond yield snapshot files: "Same" rows dropped,
// ACT/365 maturities rounded to 3 decimals of a month.
func DefaultFilter(snapshot time.Time) Filter {
	return Filter{
		SnapshotDate:  snapshot,
		SkipFlag:      "Same",
		DaysPerYear:   zerocurve.DefaultDaysPerYear,
		TenorDecimals: zerocurve.DefaultTenorDecimals,
	}
}

// Keep reports whether r belongs to the filtered snapshot.
func (f Filter) Keep(r Record) bool {
	if !utils.SameDay(r.Date, f.SnapshotDate) {
		return false
	}
	if f.SkipFlag != "" && strings.TrimSpace(r.Flag) == f.SkipFlag {
		return false
	}
	return true
}

// Observations filters records, converts days to tenors and returns them
// sorted by tenor. Identical duplicates collapse into one observation;
// duplicates that disagree on the yield are rejected. Errors index records.
func Observations(records []Record, f Filter) ([]zerocurve.Observation, error) {
	const op = "Observations"

	if f.DaysPerYear <= 0 || math.IsNaN(f.DaysPerYear) || math.IsInf(f.DaysPerYear, 0) {
		return nil, &zerocurve.InvalidInputError{Op: op, Index: -1, Reason: fmt.Sprintf("days per year %v must be finite and positive", f.DaysPerYear)}
	}

	// row is the index of the record an observation came from.
	type indexed struct {
		zerocurve.Observation
		row int
	}

	kept := make([]indexed, 0, len(records))
	for i, r := range records {
		if !f.Keep(r) {
			continue
		}
		if r.Days < 0 {
			return nil, &zerocurve.InvalidInputError{Op: op, Index: i, Reason: fmt.Sprintf("negative days to maturity %d", r.Days)}
		}
		o, err := zerocurve.NewObservation(zerocurve.DaysToTenor(r.Days, f.DaysPerYear, f.TenorDecimals), r.Rate)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		kept = append(kept, indexed{Observation: o, row: i})
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoObservations, f.SnapshotDate.Format(utils.DateLayout))
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Tenor < kept[j].Tenor
	})

	out := []zerocurve.Observation{kept[0].Observation}
	for _, o := range kept[1:] {
		last := out[len(out)-1]
		if o.Tenor != last.Tenor {
			out = append(out, o.Observation)
			continue
		}
		if o.Yield != last.Yield {
			return nil, &zerocurve.InvalidInputError{
				Op:     op,
				Index:  o.row,
				Reason: fmt.Sprintf("conflicting yields %v and %v at tenor %v", last.Yield, o.Yield, o.Tenor),
			}
		}
	}
	return out, nil
}
