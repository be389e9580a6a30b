package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/internal/contracts"
)

// steadyRows builds n rows with a constant prediction and matching
// observed quantity.
func steadyRows(item string, n int, prediction, stock, lead float64) []Row {
	out := make([]Row, n)
	for i := range out {
		out[i] = Row{ItemCode: item, Prediction: prediction, QuantitySold: prediction, CurrentStock: stock, LeadTimeDays: lead}
	}
	return out
}

func single(t *testing.T, rows []Row) contracts.ItemDemandStats {
	t.Helper()
	stats := NewAggregator().Aggregate(rows)
	require.Len(t, stats, 1)
	return stats[0]
}

func TestAggregate_SteadyDemandIsOK(t *testing.T) {
	s := single(t, steadyRows("SKU-1", 10, 120, 5000, 60))

	assert.InDelta(t, 120, s.MeanDemand, 1e-9)
	assert.Zero(t, s.Volatility, "constant demand carries no volatility")
	assert.Zero(t, s.SafetyStock)
	assert.Equal(t, 7200.0, s.TargetStock)
	assert.Equal(t, contracts.StateOK, s.State)
	assert.Equal(t, contracts.ActionOK, s.Action)

	require.NotNil(t, s.DaysOfCoverage)
	assert.Equal(t, 41.7, *s.DaysOfCoverage)
	require.NotNil(t, s.OverstockPct)
	assert.Equal(t, -0.306, *s.OverstockPct)
	assert.Nil(t, s.StockoutRiskIdx, "zero safety stock yields no risk index")
}

func TestAggregate_LowStockIsStockoutRisk(t *testing.T) {
	// Alternating 130/170 gives mean 150 and population sigma 20.
	rows := make([]Row, 10)
	for i := range rows {
		p := 130.0
		if i%2 == 1 {
			p = 170.0
		}
		rows[i] = Row{ItemCode: "SKU-1", Prediction: p, QuantitySold: p, CurrentStock: 100, LeadTimeDays: 60}
	}

	s := single(t, rows)

	assert.InDelta(t, 150, s.MeanDemand, 1e-9)
	assert.InDelta(t, 20, s.Volatility, 1e-9)
	wantSafety := ServiceLevelZ * 20 * math.Sqrt(60)
	assert.InDelta(t, wantSafety, s.SafetyStock, 1e-9)
	assert.Equal(t, math.Round(150*60+wantSafety), s.TargetStock)
	assert.Equal(t, contracts.StateStockoutRisk, s.State)
	assert.Equal(t, contracts.ActionStockoutRisk, s.Action)

	require.NotNil(t, s.StockoutRiskIdx)
	assert.Equal(t, math.Round(100/wantSafety*100)/100, *s.StockoutRiskIdx)
}

func TestAggregate_ExcessStockIsOverstock(t *testing.T) {
	rows := make([]Row, 10)
	for i := range rows {
		p := 45.0
		if i%2 == 1 {
			p = 55.0
		}
		rows[i] = Row{ItemCode: "SKU-1", Prediction: p, QuantitySold: p, CurrentStock: 100000, LeadTimeDays: 14}
	}

	s := single(t, rows)

	assert.InDelta(t, 50, s.MeanDemand, 1e-9)
	assert.InDelta(t, 5, s.Volatility, 1e-9)
	assert.Equal(t, contracts.StateOverstock, s.State)
	assert.Equal(t, contracts.ActionOverstock, s.Action)

	require.NotNil(t, s.OverstockPct)
	assert.Greater(t, *s.OverstockPct, 100.0)
}

func TestAggregate_StockoutOutranksOverstock(t *testing.T) {
	// Safety 128 and target 28: stock 50 is simultaneously under the
	// safety level and above 1.3x the target. Quantities {0, 200} give
	// sigma 100 while the prediction mean stays at -100.
	rows := []Row{
		{ItemCode: "SKU-1", Prediction: 0, QuantitySold: 0, CurrentStock: 50, LeadTimeDays: 1},
		{ItemCode: "SKU-1", Prediction: -200, QuantitySold: 200, CurrentStock: 50, LeadTimeDays: 1},
	}

	s := single(t, rows)

	assert.InDelta(t, 128, s.SafetyStock, 1e-9)
	assert.Equal(t, 28.0, s.TargetStock)
	assert.Less(t, s.CurrentStock, s.SafetyStock)
	assert.Greater(t, s.CurrentStock, OverstockMultiplier*s.TargetStock)
	assert.Equal(t, contracts.StateStockoutRisk, s.State)
}

func TestAggregate_ZeroDemandSentinels(t *testing.T) {
	s := single(t, steadyRows("SKU-1", 5, 0, 40, 7))

	assert.Zero(t, s.MeanDemand)
	assert.Zero(t, s.TargetStock)
	assert.Nil(t, s.DaysOfCoverage)
	assert.Nil(t, s.OverstockPct)
	assert.Nil(t, s.StockoutRiskIdx)
	// Any stock against a zero target reads as overstock.
	assert.Equal(t, contracts.StateOverstock, s.State)
}

func TestAggregate_SingleRowHasZeroVolatility(t *testing.T) {
	s := single(t, steadyRows("SKU-1", 1, 80, 200, 10))

	assert.Zero(t, s.Volatility)
	assert.Zero(t, s.SafetyStock)
	assert.Equal(t, 800.0, s.TargetStock)
}

func TestAggregate_VolatilityUsesTrailingWindow(t *testing.T) {
	// Wild swings followed by a constant tail longer than the window:
	// only the tail counts.
	var rows []Row
	for i := 0; i < 20; i++ {
		p := 10.0
		if i%2 == 1 {
			p = 990.0
		}
		rows = append(rows, Row{ItemCode: "SKU-1", Prediction: p, QuantitySold: p, CurrentStock: 1000, LeadTimeDays: 7})
	}
	rows = append(rows, steadyRows("SKU-1", VolatilityWindow, 100, 1000, 7)...)

	s := single(t, rows)

	assert.Zero(t, s.Volatility)
	// The mean still reads the full series.
	assert.Greater(t, s.MeanDemand, 100.0)
}

func TestAggregate_StockAndLeadRowSelection(t *testing.T) {
	rows := []Row{
		{ItemCode: "SKU-1", Prediction: 10, CurrentStock: 111, LeadTimeDays: 5},
		{ItemCode: "SKU-1", Prediction: 10, CurrentStock: 222, LeadTimeDays: 9},
		{ItemCode: "SKU-1", Prediction: 10, CurrentStock: 333, LeadTimeDays: 9},
	}

	s := single(t, rows)

	assert.Equal(t, 333.0, s.CurrentStock, "stock from the last row")
	assert.Equal(t, 5.0, s.LeadTimeDays, "lead time from the first row")
}

func TestAggregate_MultipleItemsSortedAndIdempotent(t *testing.T) {
	rows := append(steadyRows("SKU-B", 5, 100, 5000, 10), steadyRows("SKU-A", 5, 10, 20, 10)...)

	agg := NewAggregator()
	first := agg.Aggregate(rows)
	second := agg.Aggregate(rows)

	require.Len(t, first, 2)
	assert.Equal(t, "SKU-A", first[0].ItemCode)
	assert.Equal(t, "SKU-B", first[1].ItemCode)
	assert.Equal(t, first, second)

	assert.Empty(t, agg.Aggregate(nil))
}
