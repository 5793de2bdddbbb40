package zerocurve

import "math"

// Observation is one knot of the curve: a tenor in months and the yield
// observed for it.
type Observation struct {
	Tenor float64 `json:"tenor"`
	Yield float64 `json:"yield"`
}

// NewObservation validates a single (tenor, yield) pair.
func NewObservation(tenor, yield float64) (Observation, error) {
	o := Observation{Tenor: tenor, Yield: yield}
	if err := o.validate("NewObservation", -1); err != nil {
		return Observation{}, err
	}
	return o, nil
}

func (o Observation) validate(op string, index int) error {
	if !isFinite(o.Tenor) {
		return invalid(op, index, "tenor %v is not finite", o.Tenor)
	}
	if o.Tenor < 0 {
		return invalid(op, index, "tenor %v is negative", o.Tenor)
	}
	if !isFinite(o.Yield) {
		return invalid(op, index, "yield %v is not finite", o.Yield)
	}
	return nil
}

// Sample is one row of the daily rate table.
type Sample struct {
	Day  int     `json:"day"`
	Rate float64 `json:"rate"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
