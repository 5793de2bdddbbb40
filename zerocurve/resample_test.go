package zerocurve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/zerocurve/zerocurve"
)

func TestResampleDaily_Cardinality(t *testing.T) {
	t.Parallel()

	crv, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)

	samples, err := zerocurve.ResampleDaily(crv, 5400, 365)
	require.NoError(t, err)
	require.Len(t, samples, 5400)
	for i, s := range samples {
		require.Equal(t, i+1, s.Day)
		require.False(t, math.IsNaN(s.Rate))
	}
}

func TestResampleDaily_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)
	second, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)

	a, err := zerocurve.ResampleDaily(first, 720, 365)
	require.NoError(t, err)
	b, err := zerocurve.ResampleDaily(second, 720, 365)
	require.NoError(t, err)
	c, err := zerocurve.ResampleDaily(first, 720, 365)
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, math.Float64bits(a[i].Rate), math.Float64bits(b[i].Rate))
		assert.Equal(t, math.Float64bits(a[i].Rate), math.Float64bits(c[i].Rate))
	}
}

func TestResampleDaily_UsesRoundedTenor(t *testing.T) {
	t.Parallel()

	crv, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)

	samples, err := zerocurve.ResampleDaily(crv, 91, 365)
	require.NoError(t, err)

	// Day 91 is 2.99178... months, queried at 2.992.
	want, err := crv.Evaluate(2.992)
	require.NoError(t, err)
	assert.Equal(t, want, samples[90].Rate)

	unrounded := zerocurve.Grid{Days: 91, DaysPerYear: 365, TenorDecimals: -1}
	raw, err := unrounded.Resample(crv)
	require.NoError(t, err)
	exact, err := crv.Evaluate(91 * 12.0 / 365.0)
	require.NoError(t, err)
	assert.Equal(t, exact, raw[90].Rate)
}

func TestResampleDaily_RejectsBadGrid(t *testing.T) {
	t.Parallel()

	crv, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)

	for _, g := range []zerocurve.Grid{
		{Days: 0, DaysPerYear: 365},
		{Days: 10, DaysPerYear: 0},
		{Days: 10, DaysPerYear: math.NaN()},
		{Days: 10, DaysPerYear: 365, TenorDecimals: 400},
	} {
		samples, err := g.Resample(crv)
		require.Error(t, err)
		assert.Nil(t, samples)
		assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))
	}
}

func TestGridSamples_LazyAndRestartable(t *testing.T) {
	t.Parallel()

	crv, err := zerocurve.Construct(upwardObservations())
	require.NoError(t, err)

	g := zerocurve.DefaultGrid()
	seq := g.Samples(crv)

	var firstPass []zerocurve.Sample
	for s, err := range seq {
		require.NoError(t, err)
		firstPass = append(firstPass, s)
		if len(firstPass) == 10 {
			break
		}
	}
	require.Len(t, firstPass, 10)

	n := 0
	for s, err := range seq {
		require.NoError(t, err)
		if n < len(firstPass) {
			assert.Equal(t, firstPass[n], s)
		}
		n++
	}
	assert.Equal(t, zerocurve.DefaultHorizonDays, n)
}

func TestDaysToTenor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.992, zerocurve.DaysToTenor(91, 365, 3))
	assert.Equal(t, 12.0, zerocurve.DaysToTenor(365, 365, 3))
	assert.Equal(t, 91*12.0/365.0, zerocurve.DaysToTenor(91, 365, -1))
	assert.Equal(t, 2.992, zerocurve.DefaultGrid().Tenor(91))
}
