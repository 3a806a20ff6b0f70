package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Aggregator performs filtered column sums over tabular files.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an aggregator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
	}
}

// FilteredSum streams the file at path, keeps rows whose filterColumn
// field equals filterValue exactly, and sums their sumColumn values.
//
// Column names are matched against the header case-sensitively with no
// trimming, and resolved to positions once before the row loop. An
// empty or header-only file is not an error; the result is 0.0. A
// missing file yields *ResourceNotFoundError and a missing column
// *ColumnNotFoundError, both before any row is processed.
//
// Rows with too few fields or a non-numeric sum field are skipped:
// logged as warnings and recorded in the returned Report, without
// affecting the total for the remaining rows.
func (a *Aggregator) FilteredSum(ctx context.Context, path, filterColumn, filterValue, sumColumn string) (float64, *Report, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil, &ResourceNotFoundError{Path: path}
		}
		return 0, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	src, err := openSource(path)
	if err != nil {
		return 0, nil, err
	}
	defer src.Close()

	report := &Report{}

	header, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			a.logger.WarnContext(ctx, "resource is empty, nothing to aggregate",
				slog.String("path", path))
			return 0, report, nil
		}
		return 0, nil, fmt.Errorf("failed to read header: %w", err)
	}

	filterIdx, ok := columnIndex(header, filterColumn)
	if !ok {
		return 0, nil, &ColumnNotFoundError{Column: filterColumn, Header: header}
	}
	sumIdx, ok := columnIndex(header, sumColumn)
	if !ok {
		return 0, nil, &ColumnNotFoundError{Column: sumColumn, Header: header}
	}

	var total float64
	line := 1 // header line; data rows start at 2
	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read row after line %d: %w", line, err)
		}
		line++
		report.Rows++

		if len(record) <= filterIdx || len(record) <= sumIdx {
			a.logger.WarnContext(ctx, "skipping row with insufficient fields",
				slog.Int("line", line),
				slog.Int("fields", len(record)),
				slog.String("row", strings.Join(record, ",")))
			report.addSkip(SkippedRow{
				Line:   line,
				Reason: SkipShortRow,
				Raw:    strings.Join(record, ","),
			})
			continue
		}

		if record[filterIdx] != filterValue {
			continue
		}

		value, err := strconv.ParseFloat(record[sumIdx], 64)
		if err != nil {
			a.logger.WarnContext(ctx, "skipping row with unparseable sum value",
				slog.Int("line", line),
				slog.String("value", record[sumIdx]),
				slog.String("error", err.Error()))
			report.addSkip(SkippedRow{
				Line:   line,
				Reason: SkipBadNumber,
				Value:  record[sumIdx],
				Detail: err.Error(),
			})
			continue
		}

		total += value
		report.Matched++
	}

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.String("path", path),
		slog.String("filter_column", filterColumn),
		slog.String("filter_value", filterValue),
		slog.String("sum_column", sumColumn),
		slog.Int("rows", report.Rows),
		slog.Int("matched", report.Matched),
		slog.Int("skipped", len(report.Skipped)),
		slog.Float64("total", total))

	return total, report, nil
}

// columnIndex resolves a column name to its zero-based position with an
// exact, case-sensitive comparison. Lookup happens once per call, never
// per row.
func columnIndex(header []string, name string) (int, bool) {
	for i, col := range header {
		if col == name {
			return i, true
		}
	}
	return 0, false
}
