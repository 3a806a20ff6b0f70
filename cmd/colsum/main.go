// Command colsum sums a numeric column over the rows of a CSV or Excel
// file whose filter column matches a filter value, and prints the total.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"colsum/internal/aggregate"
	"colsum/internal/exporter"
	"colsum/internal/infrastructure"
	"colsum/internal/services"
)

func main() {
	file := flag.String("file", "", "path to the CSV or Excel file (required)")
	filterColumn := flag.String("filter-column", "", "header name of the column to filter on (required)")
	filterValue := flag.String("filter-value", "", "value the filter column must equal exactly")
	sumColumn := flag.String("sum-column", "", "header name of the numeric column to sum (required)")
	report := flag.String("report", "", "optional path for a CSV report of the run, including skipped rows")
	logLevel := flag.String("log-level", "warn", "log level: debug | info | warn | error")
	flag.Parse()

	if *file == "" || *filterColumn == "" || *sumColumn == "" {
		fmt.Fprintln(os.Stderr, "usage: colsum -file <path> -filter-column <name> -filter-value <value> -sum-column <name>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := infrastructure.NewConsoleLogger(*logLevel)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	total, result, err := run(context.Background(), logger, *file, *filterColumn, *filterValue, *sumColumn)
	if err != nil {
		var notFound *aggregate.ResourceNotFoundError
		var colErr *aggregate.ColumnNotFoundError
		switch {
		case errors.As(err, &notFound):
			fmt.Fprintf(os.Stderr, "colsum: file not found: %s\n", notFound.Path)
		case errors.As(err, &colErr):
			fmt.Fprintf(os.Stderr, "colsum: %s\n", colErr.Error())
		default:
			fmt.Fprintf(os.Stderr, "colsum: %s\n", err.Error())
		}
		os.Exit(1)
	}

	if *report != "" {
		writer := exporter.NewCSVWriter(filepath.Dir(*report))
		if err := writer.WriteAggregateReport(*report, result); err != nil {
			fmt.Fprintf(os.Stderr, "colsum: failed to write report: %s\n", err.Error())
			os.Exit(1)
		}
		logger.Info("Report written", slog.String("path", *report))
	}

	fmt.Println(strconv.FormatFloat(total, 'f', -1, 64))
}

// run performs the aggregation and packages the outcome for reporting.
func run(ctx context.Context, logger *slog.Logger, file, filterColumn, filterValue, sumColumn string) (float64, *services.AggregateResult, error) {
	total, rep, err := aggregate.New(logger).FilteredSum(ctx, file, filterColumn, filterValue, sumColumn)
	if err != nil {
		return 0, nil, err
	}

	return total, &services.AggregateResult{
		File:         filepath.Base(file),
		FilterColumn: filterColumn,
		FilterValue:  filterValue,
		SumColumn:    sumColumn,
		Total:        total,
		Rows:         rep.Rows,
		Matched:      rep.Matched,
		Skipped:      rep.Skipped,
	}, nil
}
