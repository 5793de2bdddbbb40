package marketdata

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/zerocurve/zerocurve"
)

var snapshot = time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)

func TestObservations_FiltersSortsAndConverts(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Date: snapshot, Days: 182, Flag: "Note", Rate: 0.0081},
		{Date: snapshot, Days: 91, Flag: "Bill", Rate: 0.0046},
		{Date: snapshot, Days: 182, Flag: "Same", Rate: 0.0099},
		{Date: snapshot.AddDate(0, 0, 1), Days: 30, Flag: "Bill", Rate: 0.5},
		{Date: snapshot, Days: 365, Rate: 0.0142},
	}

	obs, err := Observations(records, DefaultFilter(snapshot))
	require.NoError(t, err)
	assert.Equal(t, []zerocurve.Observation{
		{Tenor: 2.992, Yield: 0.0046},
		{Tenor: 5.984, Yield: 0.0081},
		{Tenor: 12, Yield: 0.0142},
	}, obs)
}

func TestObservations_Duplicates(t *testing.T) {
	t.Parallel()

	same := []Record{
		{Date: snapshot, Days: 91, Rate: 0.0046},
		{Date: snapshot, Days: 91, Rate: 0.0046},
		{Date: snapshot, Days: 182, Rate: 0.0081},
	}
	obs, err := Observations(same, DefaultFilter(snapshot))
	require.NoError(t, err)
	assert.Len(t, obs, 2)

	conflicting := []Record{
		{Date: snapshot, Days: 30, Flag: "Same", Rate: 0.0010},
		{Date: snapshot, Days: 182, Rate: 0.0081},
		{Date: snapshot, Days: 91, Rate: 0.0046},
		{Date: snapshot, Days: 91, Rate: 0.0050},
	}
	_, err = Observations(conflicting, DefaultFilter(snapshot))
	require.Error(t, err)
	assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))
	assert.Contains(t, err.Error(), "conflicting yields")

	// The error points at the offending input row, not its sorted position.
	var invalid *zerocurve.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 3, invalid.Index)
}

func TestObservations_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Observations(nil, DefaultFilter(snapshot))
	assert.True(t, errors.Is(err, ErrNoObservations))

	_, err = Observations([]Record{{Date: snapshot, Days: -1, Rate: 0.01}}, DefaultFilter(snapshot))
	assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))

	_, err = Observations([]Record{{Date: snapshot, Days: 30, Rate: math.NaN()}}, DefaultFilter(snapshot))
	assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))

	f := DefaultFilter(snapshot)
	f.DaysPerYear = 0
	_, err = Observations([]Record{{Date: snapshot, Days: 30, Rate: 0.01}}, f)
	assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))
}

func TestFilter_KeepWithoutSkipFlag(t *testing.T) {
	t.Parallel()

	f := DefaultFilter(snapshot)
	f.SkipFlag = ""
	assert.True(t, f.Keep(Record{Date: snapshot, Flag: "Same"}))
	assert.False(t, DefaultFilter(snapshot).Keep(Record{Date: snapshot, Flag: " Same "}))
}
