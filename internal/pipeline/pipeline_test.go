package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/zerocurve/config"
	"github.com/meenmo/zerocurve/internal/logging"
	"github.com/meenmo/zerocurve/marketdata"
	"github.com/meenmo/zerocurve/zerocurve"
)

const snapshotCSV = `date,days,type,rate
2010-01-04,91,Bill,0.0046
2010-01-04,182,Note,0.0081
2010-01-04,182,Same,0.0090
2010-01-04,365,Note,0.0142
2010-01-04,730,Note,0.0203
2010-01-05,91,Bill,0.0047
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cubic.csv")
	require.NoError(t, os.WriteFile(path, []byte(snapshotCSV), 0o644))
	return path
}

func TestRun_WritesDailyTable(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.InputSource = writeSnapshot(t)
	cfg.OutputSink = filepath.Join(t.TempDir(), "maturity_days_and_rates.csv")
	cfg.HorizonDays = 400

	require.NoError(t, Run(context.Background(), cfg, logging.Discard()))

	f, err := os.Open(cfg.OutputSink)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 401)
	assert.Equal(t, []string{"Maturity Days", "Rates"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "400", rows[400][0])

	// Day 365 sits exactly on the 12-month knot.
	assert.Equal(t, "0.0142", rows[365][1])
}

func TestRun_UnknownSnapshot(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.SnapshotDate = "2011-01-03"
	cfg.InputSource = writeSnapshot(t)
	cfg.OutputSink = filepath.Join(t.TempDir(), "out.csv")

	err := Run(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, marketdata.ErrNoObservations))
	_, statErr := os.Stat(cfg.OutputSink)
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestRun_TooFewObservations(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.SnapshotDate = "2010-01-05"
	cfg.InputSource = writeSnapshot(t)
	cfg.OutputSink = filepath.Join(t.TempDir(), "out.csv")

	err := Run(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, zerocurve.ErrInvalidInput))
}

func TestBuilder_Curve(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Boundary = "natural"
	b, err := NewBuilder(marketdata.NewCSVSource(writeSnapshot(t)), cfg, nil)
	require.NoError(t, err)

	crv, err := b.Curve(context.Background(), time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, crv.Observations(), 4)
	assert.Equal(t, "natural", crv.Boundary().String())
	assert.Equal(t, cfg.HorizonDays, b.Grid().Days)
}

func TestNewBuilder_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.HorizonDays = 0
	_, err := NewBuilder(marketdata.NewCSVSource("unused.csv"), cfg, nil)
	require.Error(t, err)
}
