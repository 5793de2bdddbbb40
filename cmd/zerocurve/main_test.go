package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotCSV = `date,days,type,rate
2010-01-04,91,Bill,0.0046
2010-01-04,182,Note,0.0081
2010-01-04,365,Note,0.0142
2010-01-04,730,Note,0.0203
2010-01-04,1825,Note,0.0265
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cubic.csv")
	require.NoError(t, os.WriteFile(path, []byte(snapshotCSV), 0o644))
	return path
}

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun_WritesTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "maturity_days_and_rates.csv")
	var stderr bytes.Buffer

	code := run(context.Background(), []string{
		"-input", writeInput(t),
		"-output", out,
		"-date", "2010-01-04",
		"-horizon", "5400",
		"-log-format", "json",
	}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	rows := readTable(t, out)
	require.Len(t, rows, 5401)
	assert.Equal(t, []string{"Maturity Days", "Rates"}, rows[0])
	assert.Equal(t, "5400", rows[5400][0])
	assert.Equal(t, "0.0142", rows[365][1])
	assert.Contains(t, stderr.String(), `"msg":"rate table written"`)
}

func TestRun_FlatExtrapolation(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rates.csv")
	var stderr bytes.Buffer

	code := run(context.Background(), []string{
		"-input", writeInput(t),
		"-output", out,
		"-horizon", "2000",
		"-extrapolation", "flat",
		"-boundary", "natural",
	}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	rows := readTable(t, out)
	require.Len(t, rows, 2001)
	assert.Equal(t, "0.0046", rows[1][1])
	assert.Equal(t, "0.0265", rows[2000][1])
}

func TestRun_Failures(t *testing.T) {
	input := writeInput(t)
	dir := t.TempDir()

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-bogus"}, 2},
		{"extra argument", []string{"build"}, 2},
		{"bad log format", []string{"-log-format", "xml"}, 2},
		{"missing input", []string{"-input", filepath.Join(dir, "none.csv"), "-output", filepath.Join(dir, "a.csv")}, 1},
		{"unknown date", []string{"-input", input, "-date", "2012-06-01", "-output", filepath.Join(dir, "b.csv")}, 1},
		{"bad date", []string{"-input", input, "-date", "06/01/2012", "-output", filepath.Join(dir, "c.csv")}, 1},
		{"bad horizon", []string{"-input", input, "-horizon", "0", "-output", filepath.Join(dir, "d.csv")}, 1},
		{"bad boundary", []string{"-input", input, "-boundary", "periodic", "-output", filepath.Join(dir, "e.csv")}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tc.want, run(context.Background(), tc.args, &stderr))
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stderr))
	assert.Contains(t, stderr.String(), "Usage: zerocurve")
	assert.Contains(t, stderr.String(), "-extrapolation")
}
