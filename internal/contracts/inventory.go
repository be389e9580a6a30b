package contracts

// StockState classifies an item's inventory position.
type StockState string

const (
	StateStockoutRisk StockState = "stockout risk"
	StateOverstock    StockState = "overstock"
	StateOK           StockState = "OK"
)

// Recommended actions per state.
const (
	ActionStockoutRisk = "review forecast and trigger purchase order"
	ActionOverstock    = "evaluate price markdown or promotion"
	ActionOK           = "monitor"
)

// ActionForState maps a stock state to its recommended action.
func ActionForState(state StockState) string {
	switch state {
	case StateStockoutRisk:
		return ActionStockoutRisk
	case StateOverstock:
		return ActionOverstock
	default:
		return ActionOK
	}
}

// ItemDemandStats is the per-item output of a prediction run.
// Ratio fields that would divide by zero are nil rather than infinite.
type ItemDemandStats struct {
	ItemCode         string     `json:"item_code"`
	MeanDemand       float64    `json:"mean_predicted_demand"`
	Volatility       float64    `json:"demand_volatility"`
	CurrentStock     float64    `json:"current_stock"`
	LeadTimeDays     float64    `json:"lead_time_days"`
	SafetyStock      float64    `json:"safety_stock"`
	TargetStock      float64    `json:"target_stock"`
	DaysOfCoverage   *float64   `json:"days_of_coverage"`
	OverstockPct     *float64   `json:"overstock_pct"`
	StockoutRiskIdx  *float64   `json:"stockout_risk_index"`
	State            StockState `json:"state"`
	Action           string     `json:"action"`
}
