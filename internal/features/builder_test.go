package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/logger"
)

func testBuilder() *Builder {
	return NewBuilder(logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"}))
}

// series builds daily records for one item with the given quantities.
func series(item string, start time.Time, quantities []float64) []contracts.SalesRecord {
	out := make([]contracts.SalesRecord, len(quantities))
	for i, q := range quantities {
		out[i] = contracts.SalesRecord{
			Date:         start.AddDate(0, 0, i),
			ItemCode:     item,
			Season:       "Winter",
			UnitPrice:    10,
			QuantitySold: q,
			CurrentStock: 500,
			LeadTimeDays: 14,
		}
	}
	return out
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestBuild_ShortHistoryYieldsNothing(t *testing.T) {
	b := testBuilder()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res := b.Build(series("SKU-1", start, ramp(warmupRows)))

	assert.Empty(t, res.Vectors, "thirty rows is all warmup")
	assert.Equal(t, 30, res.InputRows)
	assert.Equal(t, 30, res.DroppedRows)

	res = b.Build(nil)
	assert.Empty(t, res.Vectors)
}

func TestBuild_WarmupDroppedAndLagsRight(t *testing.T) {
	b := testBuilder()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res := b.Build(series("SKU-1", start, ramp(40)))

	require.Len(t, res.Vectors, 10)
	assert.Equal(t, 30, res.DroppedRows)

	// First surviving row is item index 30: quantity 31 on 2024-01-31.
	first := res.Vectors[0]
	assert.Equal(t, 31.0, first.QuantitySold)
	assert.Equal(t, 30.0, first.Lag1)
	assert.Equal(t, 24.0, first.Lag7)
	// Prior seven values are 24..30.
	assert.InDelta(t, 27.0, first.MA7, 1e-9)
	// Prior fourteen values are 17..30, prior thirty are 1..30.
	assert.InDelta(t, 23.5, first.MA14, 1e-9)
	assert.InDelta(t, 15.5, first.MA30, 1e-9)
	// Sample std of seven consecutive integers.
	assert.InDelta(t, math.Sqrt(28.0/6.0), first.RollingStd7, 1e-9)
}

func TestBuild_NoFutureLeakage(t *testing.T) {
	b := testBuilder()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	quantities := ramp(35)
	quantities[34] = 10000 // a spike on the last day

	res := b.Build(series("SKU-1", start, quantities))

	require.Len(t, res.Vectors, 5)
	// Rows before the spike are untouched by it.
	for _, fv := range res.Vectors[:4] {
		assert.Less(t, fv.MA7, 100.0)
		assert.Less(t, fv.RollingStd7, 10.0)
	}
	// The spike's own row still reads only the past.
	last := res.Vectors[4]
	assert.Equal(t, 10000.0, last.QuantitySold)
	assert.Equal(t, 34.0, last.Lag1)
	assert.InDelta(t, 31.0, last.MA7, 1e-9)
}

func TestBuild_ItemsAreIndependent(t *testing.T) {
	b := testBuilder()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	low := series("SKU-A", start, constant(35, 5))
	high := series("SKU-B", start, constant(35, 500))

	// Interleave so sorting has to do the grouping.
	var mixed []contracts.SalesRecord
	for i := range low {
		mixed = append(mixed, high[i], low[i])
	}

	res := b.Build(mixed)

	require.Len(t, res.Vectors, 10)
	for _, fv := range res.Vectors {
		switch fv.ItemCode {
		case "SKU-A":
			assert.Equal(t, 5.0, fv.Lag1)
			assert.InDelta(t, 5.0, fv.MA30, 1e-9)
		case "SKU-B":
			assert.Equal(t, 500.0, fv.Lag1)
			assert.InDelta(t, 500.0, fv.MA30, 1e-9)
		default:
			t.Fatalf("unexpected item %s", fv.ItemCode)
		}
		assert.Zero(t, fv.RollingStd7)
	}

	// Output grouped by item, ascending dates within each.
	assert.Equal(t, "SKU-A", res.Vectors[0].ItemCode)
	assert.Equal(t, "SKU-B", res.Vectors[5].ItemCode)
	for i := 1; i < 5; i++ {
		assert.True(t, res.Vectors[i-1].Date.Before(res.Vectors[i].Date))
	}
}

func TestBuild_CalendarFeatures(t *testing.T) {
	b := testBuilder()
	// Warmup ends so the vector lands on 2024-03-31, a Sunday and a
	// month end.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	res := b.Build(series("SKU-1", start, ramp(31)))

	require.Len(t, res.Vectors, 1)
	fv := res.Vectors[0]
	assert.Equal(t, 2024, fv.Year)
	assert.Equal(t, 3, fv.Month)
	assert.Equal(t, 6, fv.Weekday, "Sunday maps to 6 under Monday=0")
	assert.Equal(t, 5, fv.WeekOfMonth)
	assert.Equal(t, 1, fv.MonthEnd)
	assert.InDelta(t, math.Log1p(10), fv.PriceLog, 1e-12)

	// A mid-month Monday for contrast.
	res = b.Build(series("SKU-1", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), ramp(31)))
	require.Len(t, res.Vectors, 1)
	fv = res.Vectors[0] // 2024-06-10
	assert.Equal(t, 0, fv.Weekday)
	assert.Equal(t, 2, fv.WeekOfMonth)
	assert.Equal(t, 0, fv.MonthEnd)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
