package features

import (
	"math"
	"sort"
	"time"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/pkg/logger"
)

// History depth required before a row carries a full feature set. Rows
// earlier than this in an item's history are dropped.
const warmupRows = 30

// BuildResult carries the engineered vectors plus input accounting.
type BuildResult struct {
	Vectors     []contracts.FeatureVector
	InputRows   int
	DroppedRows int
}

// Builder derives model features from typed sales records: per-item lags
// and rolling statistics computed strictly from prior observations, plus
// calendar fields.
type Builder struct {
	log *logger.Logger
}

// NewBuilder creates a feature builder.
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{log: log.WithField("component", "features")}
}

// Build engineers feature vectors from the records. Records are ordered
// by (item_code, date) first, so input order never changes the output.
// Every derived value at position i reads only positions before i within
// the same item's history.
func (b *Builder) Build(records []contracts.SalesRecord) *BuildResult {
	res := &BuildResult{InputRows: len(records)}
	if len(records) == 0 {
		return res
	}

	ordered := make([]contracts.SalesRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ItemCode != ordered[j].ItemCode {
			return ordered[i].ItemCode < ordered[j].ItemCode
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	// Demand history per item, in date order, rebuilt as we walk the
	// sorted records so each row only ever sees its own past.
	history := make(map[string][]float64)

	for _, rec := range ordered {
		past := history[rec.ItemCode]
		i := len(past)
		history[rec.ItemCode] = append(past, rec.QuantitySold)

		if i < warmupRows {
			res.DroppedRows++
			continue
		}

		fv := contracts.FeatureVector{
			Date:         rec.Date,
			ItemCode:     rec.ItemCode,
			Season:       rec.Season,
			QuantitySold: rec.QuantitySold,
			CurrentStock: rec.CurrentStock,
			LeadTimeDays: rec.LeadTimeDays,
			PriceLog:     math.Log1p(rec.UnitPrice),
			Promotion:    rec.Promotion,
			Holiday:      rec.Holiday,
			Sunday:       rec.Sunday,
			StoreClosed:  rec.StoreClosed,

			Lag1:        past[i-1],
			Lag7:        past[i-7],
			MA7:         mean(past[i-7 : i]),
			MA14:        mean(past[i-14 : i]),
			MA30:        mean(past[i-30 : i]),
			RollingStd7: sampleStd(past[i-7 : i]),
		}
		setCalendar(&fv, rec.Date)

		res.Vectors = append(res.Vectors, fv)
	}

	b.log.WithFields(map[string]interface{}{
		"input_rows": res.InputRows,
		"vectors":    len(res.Vectors),
		"dropped":    res.DroppedRows,
		"items":      len(history),
	}).Debug("feature build complete")

	return res
}

// setCalendar fills the calendar-derived fields. Weekday is Monday-based
// (Monday=0 .. Sunday=6).
func setCalendar(fv *contracts.FeatureVector, d time.Time) {
	fv.Year = d.Year()
	fv.Month = int(d.Month())
	fv.Weekday = (int(d.Weekday()) + 6) % 7
	fv.WeekOfMonth = d.Day()/7 + 1
	if d.AddDate(0, 0, 1).Day() == 1 {
		fv.MonthEnd = 1
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 denominator standard deviation, matching the
// rolling volatility the rest of the pipeline reports.
func sampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}
