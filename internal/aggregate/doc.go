// Package aggregate implements single-pass filtered column sums over
// tabular files. A file's first record is the header; the filter and sum
// columns are resolved against it by name once, then data rows are
// streamed and accumulated. Rows that cannot be processed (too few
// fields, non-numeric sum field) are skipped and reported, never fatal.
//
// CSV files are read through encoding/csv; .xlsx workbooks are read
// through excelize, taking the first sheet's rows as records.
package aggregate
