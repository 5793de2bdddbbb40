package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/meenmo/zerocurve/zerocurve"
)

// Header is the column row of every rate table.
var Header = []string{"Maturity Days", "Rates"}

// CSVSink writes the table as CSV with a header row.
type CSVSink struct {
	writer  *csv.Writer
	encoder *zstd.Encoder
	closer  io.Closer
}

// NewCSVSink writes to w. Close flushes but does not close w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{writer: csv.NewWriter(w)}
}

// NewZstdCSVSink compresses the CSV stream written to w.
func NewZstdCSVSink(w io.Writer) (*CSVSink, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("CSVSink: zstd: %w", err)
	}
	return &CSVSink{writer: csv.NewWriter(enc), encoder: enc}, nil
}

// CreateCSV opens path for writing ("-" is stdout).
func CreateCSV(path string) (*CSVSink, error) {
	if path == "-" {
		return NewCSVSink(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("CSVSink: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".zst") {
		sink := NewCSVSink(f)
		sink.closer = f
		return sink, nil
	}
	sink, err := NewZstdCSVSink(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	sink.closer = f
	return sink, nil
}

// Write emits the header and one row per sample.
func (s *CSVSink) Write(ctx context.Context, _ time.Time, samples []zerocurve.Sample) error {
	if err := checkOrder(samples); err != nil {
		return fmt.Errorf("CSVSink: %w", err)
	}
	if err := s.writer.Write(Header); err != nil {
		return fmt.Errorf("CSVSink: header: %w", err)
	}
	row := make([]string, 2)
	for i, smp := range samples {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row[0] = strconv.Itoa(smp.Day)
		row[1] = strconv.FormatFloat(smp.Rate, 'g', -1, 64)
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("CSVSink: day %d: %w", smp.Day, err)
		}
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("CSVSink: flush: %w", err)
	}
	return nil
}

// Close flushes buffered output and closes files the sink opened.
func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("CSVSink: flush: %w", err)
	}
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			return fmt.Errorf("CSVSink: zstd close: %w", err)
		}
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return fmt.Errorf("CSVSink: close: %w", err)
		}
	}
	return nil
}
