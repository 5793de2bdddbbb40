package zerocurve

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTenor converts tenor labels like "1W", "3M", "10Y", "45D" to months,
// counting D and W labels on an ACT/365 year. A bare number is taken as
// months already.
func ParseTenor(tenor string) (float64, error) {
	return ParseTenorBasis(tenor, DefaultDaysPerYear)
}

// ParseTenorBasis is ParseTenor with D and W labels converted on a year of
// daysPerYear days, the same basis DaysToTenor uses for the sample grid.
func ParseTenorBasis(tenor string, daysPerYear float64) (float64, error) {
	if !isFinite(daysPerYear) || daysPerYear <= 0 {
		return 0, invalid("ParseTenor", -1, "days per year %v must be finite and positive", daysPerYear)
	}
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if tenor == "" {
		return 0, invalid("ParseTenor", -1, "empty tenor")
	}

	unit := tenor[len(tenor)-1]
	var perUnit float64
	switch unit {
	case 'D':
		perUnit = MonthsPerYear / daysPerYear
	case 'W':
		perUnit = 7 * MonthsPerYear / daysPerYear
	case 'M':
		perUnit = 1
	case 'Y':
		perUnit = MonthsPerYear
	default:
		v, err := strconv.ParseFloat(tenor, 64)
		if err != nil || !isFinite(v) || v < 0 {
			return 0, invalid("ParseTenor", -1, "cannot parse tenor %q", tenor)
		}
		return v, nil
	}

	v, err := strconv.Atoi(strings.TrimSuffix(tenor, string(unit)))
	if err != nil || v < 0 {
		return 0, invalid("ParseTenor", -1, "cannot parse tenor %q", tenor)
	}
	return float64(v) * perUnit, nil
}

// FormatTenor renders a month tenor the way ParseTenor reads it back.
func FormatTenor(months float64) string {
	if months >= MonthsPerYear && months == float64(int(months)) && int(months)%12 == 0 {
		return fmt.Sprintf("%dY", int(months)/12)
	}
	if months == float64(int(months)) {
		return fmt.Sprintf("%dM", int(months))
	}
	return strconv.FormatFloat(months, 'f', -1, 64)
}
