package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/meenmo/zerocurve/utils"
)

type csvColumns struct {
	date, days, flag, rate int
}

// columnsFromHeader locates the required date, days and rate columns. The flag
// column is the one named "flag", otherwise the third column when it is not
// one of the required ones.
func columnsFromHeader(header []string) (csvColumns, error) {
	cols := csvColumns{date: -1, days: -1, flag: -1, rate: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			cols.date = i
		case "days":
			cols.days = i
		case "rate":
			cols.rate = i
		case "flag":
			cols.flag = i
		}
	}
	if cols.date < 0 || cols.days < 0 || cols.rate < 0 {
		return cols, fmt.Errorf("header %v must contain date, days and rate columns", header)
	}
	if cols.flag < 0 && len(header) > 2 && cols.date != 2 && cols.days != 2 && cols.rate != 2 {
		cols.flag = 2
	}
	return cols, nil
}

// ReadCSV parses a yield snapshot file with a header row.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ReadCSV: empty input")
		}
		return nil, fmt.Errorf("ReadCSV: header: %w", err)
	}
	cols, err := columnsFromHeader(header)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, cols csvColumns) (Record, error) {
	need := max(cols.date, cols.days, cols.rate, cols.flag)
	if len(row) <= need {
		return Record{}, fmt.Errorf("expected at least %d fields, got %d", need+1, len(row))
	}

	dateStr := strings.TrimSpace(row[cols.date])
	if len(dateStr) > len(utils.DateLayout) {
		dateStr = dateStr[:len(utils.DateLayout)]
	}
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return Record{}, err
	}

	days, err := cast.ToFloat64E(strings.TrimSpace(row[cols.days]))
	if err != nil {
		return Record{}, fmt.Errorf("days %q: %w", row[cols.days], err)
	}
	if days != math.Trunc(days) {
		return Record{}, fmt.Errorf("days %q is not a whole number", row[cols.days])
	}

	rate, err := cast.ToFloat64E(strings.TrimSpace(row[cols.rate]))
	if err != nil {
		return Record{}, fmt.Errorf("rate %q: %w", row[cols.rate], err)
	}

	rec := Record{Date: date, Days: int(days), Rate: rate}
	if cols.flag >= 0 {
		rec.Flag = strings.TrimSpace(row[cols.flag])
	}
	return rec, nil
}

// CSVSource reads snapshots from a CSV file on every Load.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load returns the rows of the file dated snapshot.
func (s *CSVSource) Load(ctx context.Context, snapshot time.Time) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("CSVSource: %w", err)
	}
	defer f.Close()

	all, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("CSVSource %s: %w", s.Path, err)
	}

	out := all[:0]
	for _, r := range all {
		if utils.SameDay(r.Date, snapshot) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *CSVSource) Close() error {
	return nil
}
