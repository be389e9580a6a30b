package inventory

import (
	"math"
	"sort"

	"github.com/demandcast/backend/internal/contracts"
)

// Stock policy constants.
const (
	// ServiceLevelZ is the z-score for a ~90% service level used in
	// the safety stock formula.
	ServiceLevelZ = 1.28
	// OverstockMultiplier marks stock above this multiple of the
	// target as overstock.
	OverstockMultiplier = 1.3
	// VolatilityWindow bounds how many trailing quantity observations
	// feed the volatility estimate.
	VolatilityWindow = 30
)

// Row is one scored observation entering the aggregation: a per-row
// demand prediction alongside the item's stock position.
type Row struct {
	ItemCode     string
	Prediction   float64
	QuantitySold float64
	CurrentStock float64
	LeadTimeDays float64
}

// Aggregator folds per-row demand predictions into per-item inventory
// risk stats. It is a pure calculator: the same rows always produce the
// same stats.
type Aggregator struct{}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate groups rows by item and derives demand, safety and target
// stock, and the stock state for each. Within a group the current stock
// is taken from the last row and the lead time from the first. Results
// are ordered by item code.
func (a *Aggregator) Aggregate(rows []Row) []contracts.ItemDemandStats {
	groups := make(map[string][]Row)
	for _, row := range rows {
		groups[row.ItemCode] = append(groups[row.ItemCode], row)
	}

	items := make([]string, 0, len(groups))
	for item := range groups {
		items = append(items, item)
	}
	sort.Strings(items)

	out := make([]contracts.ItemDemandStats, 0, len(items))
	for _, item := range items {
		out = append(out, a.itemStats(item, groups[item]))
	}
	return out
}

func (a *Aggregator) itemStats(item string, rows []Row) contracts.ItemDemandStats {
	predictions := make([]float64, len(rows))
	quantities := make([]float64, len(rows))
	for i, row := range rows {
		predictions[i] = row.Prediction
		quantities[i] = row.QuantitySold
	}

	mean := meanOf(predictions)
	sigma := trailingVolatility(quantities)
	stock := rows[len(rows)-1].CurrentStock
	lead := rows[0].LeadTimeDays

	safety := ServiceLevelZ * sigma * math.Sqrt(lead)
	target := math.Round(mean*lead + safety)

	stats := contracts.ItemDemandStats{
		ItemCode:     item,
		MeanDemand:   mean,
		Volatility:   sigma,
		CurrentStock: stock,
		LeadTimeDays: lead,
		SafetyStock:  safety,
		TargetStock:  target,
	}

	if mean != 0 {
		stats.DaysOfCoverage = ptr(round1(stock / mean))
	}
	if target != 0 {
		stats.OverstockPct = ptr(round3((stock - target) / target))
	}
	if safety != 0 {
		stats.StockoutRiskIdx = ptr(round2(stock / safety))
	}

	// Stockout risk takes priority when both conditions hold.
	switch {
	case stock < safety:
		stats.State = contracts.StateStockoutRisk
	case stock > OverstockMultiplier*target:
		stats.State = contracts.StateOverstock
	default:
		stats.State = contracts.StateOK
	}
	stats.Action = contracts.ActionForState(stats.State)

	return stats
}

// trailingVolatility is the population standard deviation of the last
// VolatilityWindow quantity observations. Fewer than two values yields
// zero. The trimmed window discounts old demand regimes.
func trailingVolatility(quantities []float64) float64 {
	window := quantities
	if len(window) > VolatilityWindow {
		window = window[len(window)-VolatilityWindow:]
	}
	n := len(window)
	if n < 2 {
		return 0
	}
	m := meanOf(window)
	var sq float64
	for _, x := range window {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(n))
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func ptr(v float64) *float64 { return &v }
