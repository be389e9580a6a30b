package dataset

import (
	"strconv"
	"strings"

	"github.com/demandcast/backend/internal/contracts"
)

// ConvertResult carries the typed records plus counts for the rows the
// conversion had to discard, so data loss stays observable.
type ConvertResult struct {
	Records []contracts.SalesRecord
	// DroppedDates counts rows discarded for unparseable dates.
	DroppedDates int
	// DroppedNumeric counts rows discarded for unparseable numeric cells.
	DroppedNumeric int
}

// ToRecords types the raw dataset into SalesRecords. Rows whose date or
// numeric cells cannot be coerced are dropped and counted; binary flags
// that fail to coerce default to 0. Intended to run after validation has
// accepted the dataset, where such rows no longer exist.
func ToRecords(d *Dataset) *ConvertResult {
	res := &ConvertResult{}

	for r := 0; r < d.Len(); r++ {
		date, ok := ParseDate(d.Cell(r, contracts.ColDate))
		if !ok {
			res.DroppedDates++
			continue
		}

		price, ok1 := parseNumber(d.Cell(r, contracts.ColUnitPrice))
		qty, ok2 := parseNumber(d.Cell(r, contracts.ColQuantitySold))
		stock, ok3 := parseNumber(d.Cell(r, contracts.ColCurrentStock))
		lead, ok4 := parseNumber(d.Cell(r, contracts.ColLeadTimeDays))
		if !ok1 || !ok2 || !ok3 || !ok4 {
			res.DroppedNumeric++
			continue
		}

		res.Records = append(res.Records, contracts.SalesRecord{
			Date:         date,
			ItemCode:     strings.TrimSpace(d.Cell(r, contracts.ColItemCode)),
			Season:       strings.TrimSpace(d.Cell(r, contracts.ColSeason)),
			UnitPrice:    price,
			QuantitySold: qty,
			CurrentStock: stock,
			LeadTimeDays: lead,
			Promotion:    parseFlag(d.Cell(r, contracts.ColPromotion)),
			Holiday:      parseFlag(d.Cell(r, contracts.ColHoliday)),
			Sunday:       parseFlag(d.Cell(r, contracts.ColSunday)),
			StoreClosed:  parseFlag(d.Cell(r, contracts.ColStoreClosed)),
		})
	}

	return res
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFlag coerces a binary flag cell, defaulting to 0.
func parseFlag(s string) int {
	v, ok := parseNumber(s)
	if !ok || v != 1 {
		return 0
	}
	return 1
}
