package model

import (
	"sort"

	"github.com/demandcast/backend/internal/contracts"
)

// Names of the dense numeric features, in encoding order. Categorical
// one-hot columns follow these.
var numericFeatureNames = []string{
	"lag_1", "lag_7", "ma_7", "ma_14", "ma_30", "rolling_std_7",
	"price_log", "year", "month", "weekday", "week_of_month", "month_end",
	"promotion_flag", "holiday_flag", "sunday_flag", "store_closed_flag",
}

// Encoder maps feature vectors to dense numeric rows. The categorical
// vocabulary (item codes, seasons) is fixed at construction; categories
// unseen at that point encode as all zeros so scoring never fails on a
// new item.
type Encoder struct {
	Items   []string `json:"items"`
	Seasons []string `json:"seasons"`

	itemIdx   map[string]int
	seasonIdx map[string]int
}

// NewEncoder builds an encoder whose vocabulary is the distinct item
// codes and seasons in the training vectors, sorted for stable column
// order.
func NewEncoder(vectors []contracts.FeatureVector) *Encoder {
	items := make(map[string]bool)
	seasons := make(map[string]bool)
	for _, fv := range vectors {
		items[fv.ItemCode] = true
		if fv.Season != "" {
			seasons[fv.Season] = true
		}
	}

	e := &Encoder{
		Items:   sortedKeys(items),
		Seasons: sortedKeys(seasons),
	}
	e.buildIndex()
	return e
}

// buildIndex restores the lookup maps, also needed after the encoder is
// deserialized from an artifact.
func (e *Encoder) buildIndex() {
	e.itemIdx = make(map[string]int, len(e.Items))
	for i, it := range e.Items {
		e.itemIdx[it] = i
	}
	e.seasonIdx = make(map[string]int, len(e.Seasons))
	for i, s := range e.Seasons {
		e.seasonIdx[s] = i
	}
}

// Width returns the number of encoded columns.
func (e *Encoder) Width() int {
	return len(numericFeatureNames) + len(e.Items) + len(e.Seasons)
}

// FeatureNames returns the encoded column names, aligned with EncodeRow
// output.
func (e *Encoder) FeatureNames() []string {
	names := make([]string, 0, e.Width())
	names = append(names, numericFeatureNames...)
	for _, it := range e.Items {
		names = append(names, "item_code="+it)
	}
	for _, s := range e.Seasons {
		names = append(names, "season="+s)
	}
	return names
}

// EncodeRow encodes a single feature vector.
func (e *Encoder) EncodeRow(fv contracts.FeatureVector) []float64 {
	row := make([]float64, e.Width())
	row[0] = fv.Lag1
	row[1] = fv.Lag7
	row[2] = fv.MA7
	row[3] = fv.MA14
	row[4] = fv.MA30
	row[5] = fv.RollingStd7
	row[6] = fv.PriceLog
	row[7] = float64(fv.Year)
	row[8] = float64(fv.Month)
	row[9] = float64(fv.Weekday)
	row[10] = float64(fv.WeekOfMonth)
	row[11] = float64(fv.MonthEnd)
	row[12] = float64(fv.Promotion)
	row[13] = float64(fv.Holiday)
	row[14] = float64(fv.Sunday)
	row[15] = float64(fv.StoreClosed)

	base := len(numericFeatureNames)
	if i, ok := e.itemIdx[fv.ItemCode]; ok {
		row[base+i] = 1
	}
	if i, ok := e.seasonIdx[fv.Season]; ok {
		row[base+len(e.Items)+i] = 1
	}
	return row
}

// Encode encodes a batch of vectors into a dense matrix.
func (e *Encoder) Encode(vectors []contracts.FeatureVector) [][]float64 {
	rows := make([][]float64, len(vectors))
	for i, fv := range vectors {
		rows[i] = e.EncodeRow(fv)
	}
	return rows
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
