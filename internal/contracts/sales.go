package contracts

import "time"

// Column names of the sales dataset. The names are part of the upload
// contract: datasets must carry exactly these eleven columns (extra columns
// are ignored).
const (
	ColDate         = "date"
	ColItemCode     = "item_code"
	ColSeason       = "season"
	ColUnitPrice    = "unit_price"
	ColQuantitySold = "quantity_sold"
	ColCurrentStock = "current_stock"
	ColLeadTimeDays = "replenishment_lead_time_days"
	ColPromotion    = "promotion_flag"
	ColHoliday      = "holiday_flag"
	ColSunday       = "sunday_flag"
	ColStoreClosed  = "store_closed_flag"
)

// RequiredColumns lists the dataset columns in canonical order.
func RequiredColumns() []string {
	return []string{
		ColDate, ColItemCode, ColSeason, ColUnitPrice, ColQuantitySold,
		ColCurrentStock, ColLeadTimeDays, ColPromotion, ColHoliday,
		ColSunday, ColStoreClosed,
	}
}

// SalesRecord is one validated row of the sales dataset.
// Immutable once produced by the dataset converter.
type SalesRecord struct {
	Date         time.Time `json:"date"`
	ItemCode     string    `json:"item_code"`
	Season       string    `json:"season"`
	UnitPrice    float64   `json:"unit_price"`
	QuantitySold float64   `json:"quantity_sold"`
	CurrentStock float64   `json:"current_stock"`
	LeadTimeDays float64   `json:"replenishment_lead_time_days"`
	Promotion    int       `json:"promotion_flag"`
	Holiday      int       `json:"holiday_flag"`
	Sunday       int       `json:"sunday_flag"`
	StoreClosed  int       `json:"store_closed_flag"`
}
