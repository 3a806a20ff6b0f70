package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeFixture writes a CSV file into a temp dir and returns its path.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const salesFixture = `Category,Item,Value,Quantity
Category A,Widget,10.5,1
Category B,Widget,20.0,2
Category A,Gadget,15.2,3
Category C,Widget,5.0,1
Category A,Sprocket,abc,2
Category A,Widget,30.0,4
`

func TestFilteredSum(t *testing.T) {
	agg := New(nil)
	ctx := context.Background()

	tests := []struct {
		name         string
		content      string
		filterColumn string
		filterValue  string
		sumColumn    string
		wantTotal    float64
		wantMatched  int
		wantSkipped  int
	}{
		{
			name:         "sums matching rows and skips bad numbers",
			content:      salesFixture,
			filterColumn: "Category",
			filterValue:  "Category A",
			sumColumn:    "Value",
			wantTotal:    55.7,
			wantMatched:  3,
			wantSkipped:  1,
		},
		{
			name:         "single matching row",
			content:      salesFixture,
			filterColumn: "Category",
			filterValue:  "Category B",
			sumColumn:    "Value",
			wantTotal:    20.0,
			wantMatched:  1,
		},
		{
			name:         "no matching rows returns zero",
			content:      salesFixture,
			filterColumn: "Category",
			filterValue:  "Category Z",
			sumColumn:    "Value",
			wantTotal:    0.0,
		},
		{
			name:         "header only returns zero",
			content:      "Category,Item,Value,Quantity\n",
			filterColumn: "Category",
			filterValue:  "Category A",
			sumColumn:    "Value",
			wantTotal:    0.0,
		},
		{
			name:         "empty file returns zero",
			content:      "",
			filterColumn: "Category",
			filterValue:  "Category A",
			sumColumn:    "Value",
			wantTotal:    0.0,
		},
		{
			name:         "sum over a different column",
			content:      salesFixture,
			filterColumn: "Category",
			filterValue:  "Category A",
			sumColumn:    "Quantity",
			wantTotal:    10.0,
			wantMatched:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, "sales.csv", tt.content)

			total, report, err := agg.FilteredSum(ctx, path, tt.filterColumn, tt.filterValue, tt.sumColumn)
			require.NoError(t, err)
			require.NotNil(t, report)

			assert.InDelta(t, tt.wantTotal, total, 1e-9)
			assert.Equal(t, tt.wantMatched, report.Matched)
			assert.Len(t, report.Skipped, tt.wantSkipped)
		})
	}
}

func TestFilteredSum_ColumnNotFound(t *testing.T) {
	agg := New(nil)
	path := writeFixture(t, "sales.csv", salesFixture)

	t.Run("missing sum column", func(t *testing.T) {
		_, _, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "NonExistentColumn")
		require.Error(t, err)

		var colErr *ColumnNotFoundError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "NonExistentColumn", colErr.Column)
		assert.Equal(t, []string{"Category", "Item", "Value", "Quantity"}, colErr.Header)
		assert.Contains(t, colErr.Error(), "NonExistentColumn")
		assert.Contains(t, colErr.Error(), "Category, Item, Value, Quantity")
	})

	t.Run("missing filter column", func(t *testing.T) {
		_, _, err := agg.FilteredSum(context.Background(), path, "NonExistentCategory", "Category A", "Value")
		require.Error(t, err)

		var colErr *ColumnNotFoundError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "NonExistentCategory", colErr.Column)
	})
}

func TestFilteredSum_ResourceNotFound(t *testing.T) {
	agg := New(nil)

	_, _, err := agg.FilteredSum(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "Category", "Category A", "Value")
	require.Error(t, err)

	var nfErr *ResourceNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Contains(t, nfErr.Path, "missing.csv")
}

func TestFilteredSum_MalformedRows(t *testing.T) {
	agg := New(nil)
	content := "Category,Item,Value\n" +
		"Category A,Widget,10.0\n" +
		"Category A\n" +
		"Category A,Gadget,5.5\n"
	path := writeFixture(t, "ragged.csv", content)

	total, report, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "Value")
	require.NoError(t, err)

	// A skipped row never changes the total versus the same file with
	// that row removed.
	assert.InDelta(t, 15.5, total, 1e-9)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 3, report.Rows)

	require.Len(t, report.Skipped, 1)
	skip := report.Skipped[0]
	assert.Equal(t, 3, skip.Line)
	assert.Equal(t, SkipShortRow, skip.Reason)
	assert.Equal(t, "Category A", skip.Raw)
}

func TestFilteredSum_BadNumberDiagnostics(t *testing.T) {
	agg := New(nil)
	path := writeFixture(t, "sales.csv", salesFixture)

	_, report, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "Value")
	require.NoError(t, err)

	require.Len(t, report.Skipped, 1)
	skip := report.Skipped[0]
	assert.Equal(t, 6, skip.Line) // "abc" row, counting the header as line 1
	assert.Equal(t, SkipBadNumber, skip.Reason)
	assert.Equal(t, "abc", skip.Value)
	assert.NotEmpty(t, skip.Detail)
}

func TestFilteredSum_ExactMatchSemantics(t *testing.T) {
	agg := New(nil)
	content := "Code,Value\n" +
		"10,1.0\n" +
		"10.0,2.0\n" +
		" 10,4.0\n" +
		"CODE,8.0\n" +
		"code,16.0\n"
	path := writeFixture(t, "exact.csv", content)

	// Plain string equality: no numeric coercion, no trimming, no case
	// folding.
	total, report, err := agg.FilteredSum(context.Background(), path, "Code", "10", "Value")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 1, report.Matched)
}

func TestFilteredSum_QuotedFields(t *testing.T) {
	agg := New(nil)
	content := "Category,Value\n" +
		"\"Widgets, Inc.\",3.5\n" +
		"\"Widgets, Inc.\",1.5\n" +
		"Other,9.0\n"
	path := writeFixture(t, "quoted.csv", content)

	total, _, err := agg.FilteredSum(context.Background(), path, "Category", "Widgets, Inc.", "Value")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, total, 1e-9)
}

func TestFilteredSum_Idempotent(t *testing.T) {
	agg := New(nil)
	path := writeFixture(t, "sales.csv", salesFixture)

	first, _, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "Value")
	require.NoError(t, err)
	second, _, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "Value")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilteredSum_XLSX(t *testing.T) {
	agg := New(nil)
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Category", "Item", "Value"},
		{"Category A", "Widget", 10.5},
		{"Category B", "Widget", 20.0},
		{"Category A", "Gadget", 15.2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	total, report, err := agg.FilteredSum(context.Background(), path, "Category", "Category A", "Value")
	require.NoError(t, err)
	assert.InDelta(t, 25.7, total, 1e-9)
	assert.Equal(t, 2, report.Matched)
}
