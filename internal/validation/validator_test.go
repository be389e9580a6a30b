package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/logger"
)

func testValidator() *Validator {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	v := New(log)
	// Pin "now" so future-date checks stay deterministic.
	v.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return v
}

// cleanRow returns a well-formed row for the given day offset and item.
func cleanRow(day int, item string) []string {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return []string{
		date.Format("02/01/2006"), item, "Winter", "19.90", "12", "300", "30", "0", "0", "0", "0",
	}
}

func cleanDataset(rows int) *dataset.Dataset {
	var data [][]string
	for i := 0; i < rows; i++ {
		data = append(data, cleanRow(i, "SKU-1"))
	}
	return dataset.New(contracts.RequiredColumns(), data)
}

func findIssue(t *testing.T, res *contracts.ValidationResult, kind string) contracts.ValidationIssue {
	t.Helper()
	for _, issue := range res.Issues {
		if issue.Kind == kind {
			return issue
		}
	}
	t.Fatalf("issue %q not found in %+v", kind, res.Issues)
	return contracts.ValidationIssue{}
}

func hasIssue(res *contracts.ValidationResult, kind string) bool {
	for _, issue := range res.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidate_MissingColumnsShortCircuit(t *testing.T) {
	v := testValidator()

	// date and season removed; rows also contain garbage that content
	// stages would flag if they ran.
	cols := []string{
		contracts.ColItemCode, contracts.ColUnitPrice, contracts.ColQuantitySold,
		contracts.ColCurrentStock, contracts.ColLeadTimeDays, contracts.ColPromotion,
		contracts.ColHoliday, contracts.ColSunday, contracts.ColStoreClosed,
	}
	rows := [][]string{{"SKU-1", "not-a-number", "-5", "0", "0", "9", "9", "9", "9"}}

	res := v.Validate(dataset.New(cols, rows), true)

	require.False(t, res.Accepted)
	issue := findIssue(t, res, "missing_columns")
	assert.Equal(t, contracts.SeverityError, issue.Severity)
	assert.Contains(t, issue.Message, contracts.ColDate)
	assert.Contains(t, issue.Message, contracts.ColSeason)

	// Exactly one structural issue; no content stage ran.
	assert.Equal(t, 1, res.Count(contracts.SeverityError))
	assert.False(t, hasIssue(res, "non_numeric_values"))
	assert.False(t, hasIssue(res, "invalid_binary_values"))
}

func TestValidate_EmptyDataset(t *testing.T) {
	v := testValidator()

	res := v.Validate(dataset.New(contracts.RequiredColumns(), nil), true)

	require.False(t, res.Accepted)
	findIssue(t, res, "empty_dataset")
	assert.False(t, hasIssue(res, "insufficient_data"))
}

func TestValidate_CleanDatasetAccepted(t *testing.T) {
	v := testValidator()

	res := v.Validate(cleanDataset(40), true)

	assert.True(t, res.Accepted)
	assert.Equal(t, 0, res.Count(contracts.SeverityError))
	// The date range info is always present for parseable dates.
	issue := findIssue(t, res, "date_range")
	assert.Contains(t, issue.Message, "2024-01-01")
}

func TestValidate_ExtraColumnsInfoOnly(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	cols := append(append([]string{}, ds.Columns...), "store_region")
	var rows [][]string
	for _, row := range ds.Rows {
		rows = append(rows, append(append([]string{}, row...), "north"))
	}

	res := v.Validate(dataset.New(cols, rows), true)

	assert.True(t, res.Accepted)
	issue := findIssue(t, res, "extra_columns")
	assert.Equal(t, contracts.SeverityInfo, issue.Severity)
	assert.Contains(t, issue.Message, "store_region")
}

func TestValidate_InsufficientRowsWarns(t *testing.T) {
	v := testValidator()

	res := v.Validate(cleanDataset(10), true)

	assert.True(t, res.Accepted, "a small dataset warns but is not rejected")
	issue := findIssue(t, res, "insufficient_data")
	assert.Equal(t, contracts.SeverityWarning, issue.Severity)
}

func TestValidate_InvalidDatesBlockRangeChecks(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[3][0] = "not-a-date"
	ds.Rows[8][0] = "also bad"

	res := v.Validate(ds, true)

	require.False(t, res.Accepted)
	issue := findIssue(t, res, "invalid_dates")
	assert.Equal(t, 2, issue.AffectedRows)
	assert.Equal(t, []int{3, 8}, issue.SampleRows)
	// min/max based checks must not run on partially parsed dates.
	assert.False(t, hasIssue(res, "date_range"))
	assert.False(t, hasIssue(res, "future_dates"))
}

func TestValidate_FutureAndStaleDates(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[0][0] = "15/05/2031" // future relative to pinned now
	ds.Rows[1][0] = "10/03/2015" // before the stale threshold

	res := v.Validate(ds, true)

	require.False(t, res.Accepted)
	future := findIssue(t, res, "future_dates")
	assert.Equal(t, contracts.SeverityError, future.Severity)
	assert.Equal(t, 1, future.AffectedRows)

	stale := findIssue(t, res, "stale_dates")
	assert.Equal(t, contracts.SeverityWarning, stale.Severity)
	findIssue(t, res, "date_range")
}

func TestValidate_NumericChecksFireIndependently(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[0][3] = "abc"    // non-numeric price (also missing after coercion)
	ds.Rows[1][4] = "-4"     // negative quantity (also out of range)
	ds.Rows[2][5] = ""       // missing stock
	ds.Rows[3][6] = "900"    // lead time above plausible range
	ds.Rows[4][3] = "250000" // price above plausible range

	res := v.Validate(ds, true)

	require.False(t, res.Accepted)

	nonNumeric := findIssue(t, res, "non_numeric_values")
	assert.Equal(t, contracts.ColUnitPrice, nonNumeric.Column)
	assert.Equal(t, []int{0}, nonNumeric.SampleRows)

	negative := findIssue(t, res, "negative_values")
	assert.Equal(t, contracts.ColQuantitySold, negative.Column)

	// Both the non-numeric price and the blank stock count as missing.
	missingCols := map[string]bool{}
	for _, issue := range res.Issues {
		if issue.Kind == "missing_values" {
			missingCols[issue.Column] = true
		}
	}
	assert.True(t, missingCols[contracts.ColUnitPrice])
	assert.True(t, missingCols[contracts.ColCurrentStock])

	// Out-of-range values warn, never error.
	oorCols := map[string]contracts.Severity{}
	for _, issue := range res.Issues {
		if issue.Kind == "out_of_range" {
			oorCols[issue.Column] = issue.Severity
		}
	}
	assert.Equal(t, contracts.SeverityWarning, oorCols[contracts.ColLeadTimeDays])
	assert.Equal(t, contracts.SeverityWarning, oorCols[contracts.ColUnitPrice])
	assert.Equal(t, contracts.SeverityWarning, oorCols[contracts.ColQuantitySold])
}

func TestValidate_BinaryColumns(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[2][7] = "2"   // promotion_flag out of domain
	ds.Rows[5][8] = "yes" // non-numeric is not a binary-domain error

	res := v.Validate(ds, true)

	require.False(t, res.Accepted)
	issue := findIssue(t, res, "invalid_binary_values")
	assert.Equal(t, contracts.ColPromotion, issue.Column)
	assert.Equal(t, 1, issue.AffectedRows)
}

func TestValidate_Categoricals(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[0][2] = "Monsoon"
	ds.Rows[1][1] = ""

	res := v.Validate(ds, true)

	require.False(t, res.Accepted)

	season := findIssue(t, res, "unusual_season")
	assert.Equal(t, contracts.SeverityWarning, season.Severity)
	assert.Contains(t, season.Message, "Monsoon")

	code := findIssue(t, res, "empty_item_code")
	assert.Equal(t, contracts.SeverityError, code.Severity)
	assert.Equal(t, []int{1}, code.SampleRows)
}

func TestValidate_Duplicates(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[7] = append([]string{}, ds.Rows[3]...) // same date + item twice

	res := v.Validate(ds, true)

	assert.True(t, res.Accepted, "duplicates warn, never block")
	issue := findIssue(t, res, "duplicate_records")
	assert.Equal(t, contracts.SeverityWarning, issue.Severity)
	assert.Equal(t, 2, issue.AffectedRows, "all rows of the pair are affected")
	assert.Equal(t, []int{3, 7}, issue.SampleRows)
}

func TestValidate_TemporalGaps(t *testing.T) {
	v := testValidator()

	var rows [][]string
	for i := 0; i < 20; i++ {
		rows = append(rows, cleanRow(i, "SKU-1"))
	}
	// SKU-2 has a 90-day hole in its history.
	for i := 0; i < 10; i++ {
		rows = append(rows, cleanRow(i, "SKU-2"))
	}
	for i := 100; i < 110; i++ {
		rows = append(rows, cleanRow(i, "SKU-2"))
	}

	res := v.Validate(dataset.New(contracts.RequiredColumns(), rows), true)

	assert.True(t, res.Accepted)
	issue := findIssue(t, res, "temporal_gaps")
	assert.Equal(t, contracts.SeverityInfo, issue.Severity)
	assert.Contains(t, issue.Message, "SKU-2")
}

func TestValidate_TemporalGapsLimitedToFirstTenItems(t *testing.T) {
	v := testValidator()

	var rows [][]string
	// Eleven items before the gappy one; the scan must stop at ten.
	for i := 0; i < 11; i++ {
		item := fmt.Sprintf("SKU-%d", i)
		rows = append(rows, cleanRow(0, item), cleanRow(1, item))
	}
	rows = append(rows, cleanRow(0, "SKU-GAP"), cleanRow(200, "SKU-GAP"))

	res := v.Validate(dataset.New(contracts.RequiredColumns(), rows), true)

	assert.False(t, hasIssue(res, "temporal_gaps"))
}

func TestValidate_BusinessRules(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[4][4] = "10"
	ds.Rows[4][5] = "0" // sales with zero stock
	ds.Rows[9][4] = "1"
	ds.Rows[9][5] = "40000" // 40000/(1+1) = 20000x ratio

	res := v.Validate(ds, true)

	assert.True(t, res.Accepted)
	noStock := findIssue(t, res, "sales_without_stock")
	assert.Equal(t, []int{4}, noStock.SampleRows)

	excessive := findIssue(t, res, "excessive_stock")
	assert.Equal(t, []int{9}, excessive.SampleRows)
}

func TestValidate_QualitySummary(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(40)
	// Blank 10% of the season column.
	for i := 0; i < 4; i++ {
		ds.Rows[i][2] = ""
	}
	// A sparse second item.
	ds.Rows[39] = cleanRow(39, "SKU-RARE")

	res := v.Validate(ds, true)

	missing := findIssue(t, res, "high_missing_rate")
	assert.Equal(t, contracts.SeverityWarning, missing.Severity)
	assert.Contains(t, missing.Message, contracts.ColSeason)

	sparse := findIssue(t, res, "sparse_items")
	assert.Equal(t, contracts.SeverityInfo, sparse.Severity)
	assert.Contains(t, sparse.Message, "1 items")
}

func TestValidate_SampleRowsCappedAtFive(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(40)
	for i := 0; i < 8; i++ {
		ds.Rows[i][4] = "bad"
	}

	res := v.Validate(ds, true)

	issue := findIssue(t, res, "non_numeric_values")
	assert.Equal(t, 8, issue.AffectedRows, "full count retained")
	assert.Len(t, issue.SampleRows, 5, "sample capped")
}

func TestValidate_StrictDoesNotChangeSeverities(t *testing.T) {
	v := testValidator()

	ds := cleanDataset(35)
	ds.Rows[0][4] = "-1"

	strict := v.Validate(ds, true)
	lax := v.Validate(ds, false)

	assert.Equal(t, strict.Accepted, lax.Accepted)
	assert.Equal(t, len(strict.Issues), len(lax.Issues))
}
