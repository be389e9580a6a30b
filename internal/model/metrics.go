package model

import (
	"math"
	"sort"

	"github.com/demandcast/backend/internal/contracts"
)

// computeMetrics evaluates predictions against actuals. Ratio metrics
// that divide by the actual skip zero actuals; WAPE and sMAPE keep them.
func computeMetrics(actual, predicted []float64) contracts.ModelMetrics {
	n := len(actual)
	if n == 0 {
		return contracts.ModelMetrics{}
	}

	var absSum, sqSum float64
	var pctSum, biasSum float64
	pctN := 0
	var smapeSum float64
	smapeN := 0
	var absErrTotal, absActTotal float64

	for i := 0; i < n; i++ {
		err := predicted[i] - actual[i]
		abs := math.Abs(err)

		absSum += abs
		sqSum += err * err
		absErrTotal += abs
		absActTotal += math.Abs(actual[i])

		if actual[i] != 0 {
			pctSum += abs / math.Abs(actual[i])
			biasSum += err / actual[i]
			pctN++
		}
		if denom := math.Abs(actual[i]) + math.Abs(predicted[i]); denom != 0 {
			smapeSum += 2 * abs / denom
			smapeN++
		}
	}

	m := contracts.ModelMetrics{
		MAE:  absSum / float64(n),
		RMSE: math.Sqrt(sqSum / float64(n)),
	}
	if pctN > 0 {
		m.MAPE = pctSum / float64(pctN) * 100
		m.Bias = biasSum / float64(pctN) * 100
	}
	if absActTotal > 0 {
		m.WAPE = absErrTotal / absActTotal * 100
	}
	if smapeN > 0 {
		m.SMAPE = smapeSum / float64(smapeN) * 100
	}
	m.Precision = 100 - m.MAPE
	m.R2 = rSquared(actual, predicted)
	return m
}

// rSquared is the coefficient of determination. Constant actuals score 0
// rather than dividing by zero.
func rSquared(actual, predicted []float64) float64 {
	mean := meanOf(actual)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		d := actual[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// rankImportance turns accumulated per-column gains into a ranked report,
// normalized so the values sum to 1. Columns that never split are
// omitted.
func rankImportance(gains map[int]float64, names []string) []contracts.FeatureImportance {
	var total float64
	for _, g := range gains {
		total += g
	}
	if total == 0 {
		return nil
	}

	out := make([]contracts.FeatureImportance, 0, len(gains))
	for col, g := range gains {
		if col < 0 || col >= len(names) {
			continue
		}
		out = append(out, contracts.FeatureImportance{
			Feature:    names[col],
			Importance: g / total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// dailySeries sums actual and predicted quantities per calendar day of
// the holdout, ordered by date.
func dailySeries(vectors []contracts.FeatureVector, actual, predicted []float64) []contracts.DailyAggregate {
	type accum struct{ actual, predicted float64 }
	byDay := make(map[string]*accum)
	for i, fv := range vectors {
		day := fv.Date.Format("2006-01-02")
		a, ok := byDay[day]
		if !ok {
			a = &accum{}
			byDay[day] = a
		}
		a.actual += actual[i]
		a.predicted += predicted[i]
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]contracts.DailyAggregate, len(days))
	for i, d := range days {
		out[i] = contracts.DailyAggregate{Date: d, Actual: byDay[d].actual, Predicted: byDay[d].predicted}
	}
	return out
}
