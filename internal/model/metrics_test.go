package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/internal/contracts"
)

func TestComputeMetrics(t *testing.T) {
	actual := []float64{10, 20, 40}
	predicted := []float64{12, 18, 40}

	m := computeMetrics(actual, predicted)

	assert.InDelta(t, 4.0/3.0, m.MAE, 1e-9)
	// errors: +2, -2, 0 -> RMSE sqrt(8/3)
	assert.InDelta(t, 1.6329931618554522, m.RMSE, 1e-9)
	// |2|/10 + |2|/20 = 0.3 over 3 points -> 10%
	assert.InDelta(t, 10.0, m.MAPE, 1e-9)
	assert.InDelta(t, 90.0, m.Precision, 1e-9)
	// 4 absolute error over 70 actual
	assert.InDelta(t, 4.0/70.0*100, m.WAPE, 1e-9)
	// bias: (+2/10 - 2/20 + 0)/3 -> +10/3 %
	assert.InDelta(t, 10.0/3.0, m.Bias, 1e-9)
	// smape terms: 4/22, 4/38, 0
	assert.InDelta(t, (4.0/22.0+4.0/38.0)/3.0*100, m.SMAPE, 1e-9)
}

func TestComputeMetrics_ZeroActualsExcluded(t *testing.T) {
	m := computeMetrics([]float64{0, 10}, []float64{5, 10})

	assert.InDelta(t, 2.5, m.MAE, 1e-9)
	assert.Zero(t, m.MAPE, "zero actuals never enter MAPE")
	assert.InDelta(t, 50.0, m.WAPE, 1e-9, "but they do enter WAPE")
	assert.InDelta(t, 100.0, m.Precision, 1e-9)
}

func TestComputeMetrics_Perfect(t *testing.T) {
	m := computeMetrics([]float64{3, 7, 11}, []float64{3, 7, 11})

	assert.Zero(t, m.MAE)
	assert.Zero(t, m.RMSE)
	assert.Zero(t, m.WAPE)
	assert.InDelta(t, 1.0, m.R2, 1e-12)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := computeMetrics(nil, nil)
	assert.Zero(t, m.MAE)
	assert.Zero(t, m.R2)
}

func TestRSquared_ConstantActuals(t *testing.T) {
	assert.Zero(t, rSquared([]float64{5, 5, 5}, []float64{4, 5, 6}))
}

func TestRankImportance(t *testing.T) {
	names := []string{"lag_1", "ma_7", "item_code=A"}
	gains := map[int]float64{0: 30, 1: 10, 2: 60}

	out := rankImportance(gains, names)

	require.Len(t, out, 3)
	assert.Equal(t, "item_code=A", out[0].Feature)
	assert.InDelta(t, 0.6, out[0].Importance, 1e-9)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, "lag_1", out[1].Feature)
	assert.Equal(t, 2, out[1].Rank)
	assert.Equal(t, "ma_7", out[2].Feature)
	assert.Equal(t, 3, out[2].Rank)

	assert.Nil(t, rankImportance(map[int]float64{}, names))
}

func TestDailySeries(t *testing.T) {
	day1 := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	day0 := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	vectors := []contracts.FeatureVector{
		{Date: day1, ItemCode: "A"},
		{Date: day0, ItemCode: "A"},
		{Date: day1, ItemCode: "B"},
	}

	series := dailySeries(vectors, []float64{10, 5, 20}, []float64{11, 4, 19})

	require.Len(t, series, 2)
	assert.Equal(t, "2024-11-01", series[0].Date)
	assert.Equal(t, 5.0, series[0].Actual)
	assert.Equal(t, 4.0, series[0].Predicted)
	assert.Equal(t, "2024-11-02", series[1].Date)
	assert.Equal(t, 30.0, series[1].Actual)
	assert.Equal(t, 30.0, series[1].Predicted)
}
