package utils

import (
	"fmt"
	"strings"
)

// DaysPerYear returns the year length implied by a day count convention.
// Supported conventions: ACT/360, ACT/365F, 30E/360, 30/360
func DaysPerYear(convention string) (float64, error) {
	switch strings.ToUpper(strings.TrimSpace(convention)) {
	case "ACT/360", "30E/360", "30/360":
		return 360.0, nil
	case "ACT/365F", "ACT/365":
		return 365.0, nil
	default:
		return 0, fmt.Errorf("unsupported day count convention %q", convention)
	}
}
