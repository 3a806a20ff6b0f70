package aggregate

// SkipReason classifies why a data row was excluded from the sum.
type SkipReason string

const (
	// SkipShortRow means the row had too few fields to reach one of the
	// resolved column positions.
	SkipShortRow SkipReason = "short_row"
	// SkipBadNumber means the sum-column field did not parse as a float.
	SkipBadNumber SkipReason = "bad_number"
)

// SkippedRow describes a single data row that was skipped during a scan.
// Line is 1-based counting the header as line 1, so the first data row
// is line 2.
type SkippedRow struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
	Value  string     `json:"value,omitempty"`
	Raw    string     `json:"raw,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// Report collects per-scan diagnostics so callers can inspect skipped
// rows programmatically instead of relying on log output. The returned
// total is always correct for the rows that were well formed.
type Report struct {
	Rows    int          `json:"rows"`
	Matched int          `json:"matched"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

func (r *Report) addSkip(s SkippedRow) {
	r.Skipped = append(r.Skipped, s)
}
