package model

import (
	"math/rand"
	"sort"

	"github.com/demandcast/backend/internal/contracts"
)

// trainBoosting fits a gradient-boosted tree ensemble with a
// squared-error objective: each round fits a regularized regression tree
// to the current residuals on a row and column subsample, then shrinks
// its contribution by the learning rate. Returns the fitted trees, the
// base prediction, and accumulated split gain per encoded feature.
func trainBoosting(rows [][]float64, target []float64, hp contracts.Hyperparameters) ([]*regTree, float64, map[int]float64) {
	rng := rand.New(rand.NewSource(hp.Seed))
	gains := make(map[int]float64)

	base := meanOf(target)
	pred := make([]float64, len(target))
	for i := range pred {
		pred[i] = base
	}

	residual := make([]float64, len(target))
	nCols := 0
	if len(rows) > 0 {
		nCols = len(rows[0])
	}

	params := treeParams{
		maxDepth: hp.MaxDepth,
		lambda:   hp.RegLambda,
		alpha:    hp.RegAlpha,
		minLeaf:  1,
	}

	trees := make([]*regTree, 0, hp.Trees)
	for round := 0; round < hp.Trees; round++ {
		for i := range target {
			residual[i] = target[i] - pred[i]
		}

		indices := sampleRows(rng, len(target), hp.Subsample)
		columns := sampleColumns(rng, nCols, hp.ColsampleTree)

		tree := newTreeBuilder(rows, residual, columns, params, gains).build(indices)
		trees = append(trees, tree)

		for i, row := range rows {
			pred[i] += hp.LearningRate * tree.predict(row)
		}
	}

	return trees, base, gains
}

// sampleRows draws a fraction of row indices without replacement. The
// full index set is returned when the fraction rounds to everything.
func sampleRows(rng *rand.Rand, n int, fraction float64) []int {
	k := int(fraction * float64(n))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(n)[:k]
	sort.Ints(picked)
	return picked
}

// sampleColumns draws the feature subset for one tree.
func sampleColumns(rng *rand.Rand, n int, fraction float64) []int {
	k := int(fraction * float64(n))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(n)[:k]
	sort.Ints(picked)
	return picked
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
