package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used by snapshot files and configuration.
const DateLayout = "2006-01-02"

// ParseDate converts YYYY-MM-DD to a UTC midnight time.Time.
func ParseDate(strDate string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(strDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", strDate, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RoundHalfEven rounds to the specified decimal places with ties going to the
// even neighbour, the way numpy.round does.
func RoundHalfEven(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.RoundToEven(val*pow) / pow
}
