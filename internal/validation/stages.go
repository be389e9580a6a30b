package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
)

// checkStructure verifies required-column presence and that the dataset is
// non-empty. Returns false when either fails, which stops all content
// stages. Extra columns are reported but never block.
func checkStructure(ds *dataset.Dataset, rep *report) bool {
	required := contracts.RequiredColumns()

	var missing []string
	for _, col := range required {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		rep.addError("missing_columns", "",
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	requiredSet := make(map[string]bool, len(required))
	for _, col := range required {
		requiredSet[col] = true
	}
	var extra []string
	for _, col := range ds.Columns {
		if !requiredSet[col] {
			extra = append(extra, col)
		}
	}
	if len(extra) > 0 {
		rep.addInfo("extra_columns", "",
			fmt.Sprintf("unrecognized columns will be ignored: %s", strings.Join(extra, ", ")))
	}

	if ds.Len() == 0 {
		rep.addError("empty_dataset", "", "the dataset contains no rows", nil)
	}

	return len(missing) == 0 && ds.Len() > 0
}

// checkVolume warns when the dataset is too small for reliable forecasting.
func checkVolume(ds *dataset.Dataset, rep *report) {
	if ds.Len() < minRows {
		rep.addWarning("insufficient_data", "",
			fmt.Sprintf("only %d rows; at least %d are recommended for reliable forecasting", ds.Len(), minRows), nil)
	}
}

// parseDateColumn parses every date cell once, day-first. Entries are nil
// for cells that did not parse.
func parseDateColumn(ds *dataset.Dataset) []*time.Time {
	out := make([]*time.Time, ds.Len())
	for r := 0; r < ds.Len(); r++ {
		if t, ok := dataset.ParseDate(ds.Cell(r, contracts.ColDate)); ok {
			parsed := t
			out[r] = &parsed
		}
	}
	return out
}

// checkDates validates the date column. Range checks only run when every
// value parsed; partial garbage makes min/max meaningless.
func checkDates(ds *dataset.Dataset, dates []*time.Time, now time.Time, rep *report) {
	var invalid []int
	for r, d := range dates {
		if d == nil {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) > 0 {
		rep.addError("invalid_dates", contracts.ColDate,
			fmt.Sprintf("%d unparseable date values", len(invalid)), invalid)
		return
	}
	if len(dates) == 0 {
		return
	}

	minDate, maxDate := *dates[0], *dates[0]
	var future []int
	for r, d := range dates {
		if d.Before(minDate) {
			minDate = *d
		}
		if d.After(maxDate) {
			maxDate = *d
		}
		if d.After(now) {
			future = append(future, r)
		}
	}

	if len(future) > 0 {
		rep.addError("future_dates", contracts.ColDate,
			fmt.Sprintf("%d dates in the future (latest: %s)", len(future), maxDate.Format("2006-01-02")), future)
	}

	staleThreshold := time.Date(staleYear, 1, 1, 0, 0, 0, 0, time.UTC)
	if minDate.Before(staleThreshold) {
		rep.addWarning("stale_dates", contracts.ColDate,
			fmt.Sprintf("very old dates present (earliest: %s)", minDate.Format("2006-01-02")), nil)
	}

	rep.addInfo("date_range", contracts.ColDate,
		fmt.Sprintf("date range: %s to %s", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02")))
}

// checkNumericColumns runs the four independent checks per numeric column:
// non-numeric, negative, missing, and out of plausible range. A cell can
// trip several of them at once.
func checkNumericColumns(ds *dataset.Dataset, rep *report) {
	for _, nr := range numericRanges {
		var nonNumeric, negative, outOfRange, missing []int

		for r := 0; r < ds.Len(); r++ {
			raw := strings.TrimSpace(ds.Cell(r, nr.column))
			if raw == "" {
				missing = append(missing, r)
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				nonNumeric = append(nonNumeric, r)
				// Coercion failed, so the value is also missing.
				missing = append(missing, r)
				continue
			}
			if v < 0 {
				negative = append(negative, r)
			}
			if v < nr.min || v > nr.max {
				outOfRange = append(outOfRange, r)
			}
		}

		if len(nonNumeric) > 0 {
			rep.addError("non_numeric_values", nr.column,
				fmt.Sprintf("%d non-numeric values in %s", len(nonNumeric), nr.column), nonNumeric)
		}
		if len(negative) > 0 {
			rep.addError("negative_values", nr.column,
				fmt.Sprintf("%d negative values in %s", len(negative), nr.column), negative)
		}
		if len(missing) > 0 {
			rep.addError("missing_values", nr.column,
				fmt.Sprintf("%d missing values in %s", len(missing), nr.column), missing)
		}
		if len(outOfRange) > 0 {
			rep.addWarning("out_of_range", nr.column,
				fmt.Sprintf("%d values outside the expected range [%g, %g] in %s",
					len(outOfRange), nr.min, nr.max, nr.column), outOfRange)
		}
	}
}

// checkBinaryColumns errors on coerced flag values outside {0, 1}.
// Non-numeric cells are left to the missing-data quality summary.
func checkBinaryColumns(ds *dataset.Dataset, rep *report) {
	for _, col := range binaryColumns {
		var invalid []int
		for r := 0; r < ds.Len(); r++ {
			raw := strings.TrimSpace(ds.Cell(r, col))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if v != 0 && v != 1 {
				invalid = append(invalid, r)
			}
		}
		if len(invalid) > 0 {
			rep.addError("invalid_binary_values", col,
				fmt.Sprintf("%d values in %s must be 0 or 1", len(invalid), col), invalid)
		}
	}
}

// checkCategoricalColumns warns on unusual seasons and errors on missing
// item codes.
func checkCategoricalColumns(ds *dataset.Dataset, rep *report) {
	var badSeasons []int
	unusual := make(map[string]bool)
	for r := 0; r < ds.Len(); r++ {
		season := strings.TrimSpace(ds.Cell(r, contracts.ColSeason))
		if !validSeasons[season] {
			badSeasons = append(badSeasons, r)
			unusual[season] = true
		}
	}
	if len(badSeasons) > 0 {
		values := make([]string, 0, len(unusual))
		for s := range unusual {
			values = append(values, s)
		}
		sort.Strings(values)
		rep.addWarning("unusual_season", contracts.ColSeason,
			fmt.Sprintf("non-standard season values: %s", strings.Join(values, ", ")), badSeasons)
	}

	var emptyCodes []int
	for r := 0; r < ds.Len(); r++ {
		if strings.TrimSpace(ds.Cell(r, contracts.ColItemCode)) == "" {
			emptyCodes = append(emptyCodes, r)
		}
	}
	if len(emptyCodes) > 0 {
		rep.addError("empty_item_code", contracts.ColItemCode,
			fmt.Sprintf("%d rows with empty item codes", len(emptyCodes)), emptyCodes)
	}
}

// checkDuplicates warns on repeated (date, item_code) pairs. All rows of a
// duplicated pair count as affected.
func checkDuplicates(ds *dataset.Dataset, rep *report) {
	groups := make(map[string][]int)
	order := make([]string, 0)
	for r := 0; r < ds.Len(); r++ {
		key := ds.Cell(r, contracts.ColDate) + "\x00" + ds.Cell(r, contracts.ColItemCode)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	var dup []int
	for _, key := range order {
		if rows := groups[key]; len(rows) > 1 {
			dup = append(dup, rows...)
		}
	}
	if len(dup) > 0 {
		sort.Ints(dup)
		rep.addWarning("duplicate_records", "",
			fmt.Sprintf("%d duplicate rows (same date and item_code)", len(dup)), dup)
	}
}

// checkTemporalGaps scans the first maxGapItems distinct items (in dataset
// order) for consecutive-date gaps above gapDays within each item's
// history.
func checkTemporalGaps(ds *dataset.Dataset, dates []*time.Time, rep *report) {
	itemDates := make(map[string][]time.Time)
	var order []string
	for r := 0; r < ds.Len(); r++ {
		item := strings.TrimSpace(ds.Cell(r, contracts.ColItemCode))
		if item == "" || dates[r] == nil {
			continue
		}
		if _, seen := itemDates[item]; !seen {
			if len(order) >= maxGapItems {
				continue
			}
			order = append(order, item)
		}
		itemDates[item] = append(itemDates[item], *dates[r])
	}

	for _, item := range order {
		seq := itemDates[item]
		if len(seq) < 2 {
			continue
		}
		sort.Slice(seq, func(i, j int) bool { return seq[i].Before(seq[j]) })

		for i := 1; i < len(seq); i++ {
			if seq[i].Sub(seq[i-1]) > gapDays*24*time.Hour {
				rep.addInfo("temporal_gaps", contracts.ColDate,
					fmt.Sprintf("gaps longer than %d days detected for item %s", gapDays, item))
				break
			}
		}
	}
}

// checkBusinessRules flags rows that are numerically fine but commercially
// suspicious: sales recorded against zero stock, and stock far above the
// sales level.
func checkBusinessRules(ds *dataset.Dataset, rep *report) {
	var salesNoStock, excessive []int
	for r := 0; r < ds.Len(); r++ {
		qty, ok1 := parseCell(ds, r, contracts.ColQuantitySold)
		stock, ok2 := parseCell(ds, r, contracts.ColCurrentStock)
		if !ok1 || !ok2 {
			continue
		}
		if qty > 0 && stock == 0 {
			salesNoStock = append(salesNoStock, r)
		}
		if stock/(qty+1) > stockRatioLimit {
			excessive = append(excessive, r)
		}
	}

	if len(salesNoStock) > 0 {
		rep.addWarning("sales_without_stock", "",
			fmt.Sprintf("%d rows record sales with current stock at 0", len(salesNoStock)), salesNoStock)
	}
	if len(excessive) > 0 {
		rep.addWarning("excessive_stock", "",
			fmt.Sprintf("%d rows with stock above %dx the sales level", len(excessive), stockRatioLimit), excessive)
	}
}

// checkQuality summarizes overall data quality: per-column missing rates
// and items with too few records to forecast well.
func checkQuality(ds *dataset.Dataset, rep *report) {
	if ds.Len() == 0 {
		return
	}

	var highMissing []string
	for _, col := range ds.Columns {
		missing := 0
		for r := 0; r < ds.Len(); r++ {
			if strings.TrimSpace(ds.Cell(r, col)) == "" {
				missing++
			}
		}
		pct := float64(missing) / float64(ds.Len()) * 100
		if pct > missingPctLimit {
			highMissing = append(highMissing, fmt.Sprintf("%s: %.1f%%", col, pct))
		}
	}
	if len(highMissing) > 0 {
		rep.addWarning("high_missing_rate", "",
			fmt.Sprintf("columns with more than %.0f%% missing data: %s",
				missingPctLimit, strings.Join(highMissing, ", ")), nil)
	}

	counts := make(map[string]int)
	for r := 0; r < ds.Len(); r++ {
		item := strings.TrimSpace(ds.Cell(r, contracts.ColItemCode))
		if item != "" {
			counts[item]++
		}
	}
	sparse := 0
	for _, n := range counts {
		if n < minItemRecords {
			sparse++
		}
	}
	if sparse > 0 {
		rep.addInfo("sparse_items", contracts.ColItemCode,
			fmt.Sprintf("%d items with fewer than %d records", sparse, minItemRecords))
	}
}

func parseCell(ds *dataset.Dataset, row int, col string) (float64, bool) {
	raw := strings.TrimSpace(ds.Cell(row, col))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
