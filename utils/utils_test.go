package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfEven(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.5, RoundHalfEven(0.5, 3))
	assert.Equal(t, 2.0, RoundHalfEven(2.5, 0))
	assert.Equal(t, 4.0, RoundHalfEven(3.5, 0))
	assert.Equal(t, 2.992, RoundHalfEven(91*12.0/365.0, 3))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate(" 2010-01-04 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, SameDay(d, time.Date(2010, 1, 4, 15, 30, 0, 0, time.UTC)))

	_, err = ParseDate("04/01/2010")
	require.Error(t, err)
}

func TestDaysPerYear(t *testing.T) {
	t.Parallel()

	v, err := DaysPerYear("act/365f")
	require.NoError(t, err)
	assert.Equal(t, 365.0, v)

	v, err = DaysPerYear("ACT/360")
	require.NoError(t, err)
	assert.Equal(t, 360.0, v)

	_, err = DaysPerYear("BUS/252")
	require.Error(t, err)
}
