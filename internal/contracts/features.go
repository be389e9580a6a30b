package contracts

import "time"

// FeatureVector is the per-row model input derived from a SalesRecord.
// Lag and rolling fields are computed from rows strictly before Date for
// the same item; rows lacking the full history are dropped, never imputed.
type FeatureVector struct {
	// Row identity and passthrough fields needed downstream.
	Date         time.Time `json:"date"`
	ItemCode     string    `json:"item_code"`
	Season       string    `json:"season"`
	QuantitySold float64   `json:"quantity_sold"`
	CurrentStock float64   `json:"current_stock"`
	LeadTimeDays float64   `json:"replenishment_lead_time_days"`

	// Calendar features.
	Year        int `json:"year"`
	Month       int `json:"month"`
	Weekday     int `json:"weekday"` // Monday = 0
	WeekOfMonth int `json:"week_of_month"`
	MonthEnd    int `json:"month_end"`

	// Price feature: log1p(unit_price).
	PriceLog float64 `json:"price_log"`

	// Lag and rolling features over prior rows of the same item.
	Lag1        float64 `json:"lag_1"`
	Lag7        float64 `json:"lag_7"`
	MA7         float64 `json:"ma_7"`
	MA14        float64 `json:"ma_14"`
	MA30        float64 `json:"ma_30"`
	RollingStd7 float64 `json:"rolling_std_7"`

	// Binary flags.
	Promotion   int `json:"promotion_flag"`
	Holiday     int `json:"holiday_flag"`
	Sunday      int `json:"sunday_flag"`
	StoreClosed int `json:"store_closed_flag"`
}
