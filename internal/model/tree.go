package model

import (
	"math"
	"sort"
)

// Splits consider at most this many candidate thresholds per feature;
// larger value sets are quantile-sampled.
const maxSplitCandidates = 32

// treeNode is one node of a regression tree, stored flat by index so a
// fitted tree serializes directly.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// regTree is a fitted regression tree over encoded feature rows.
type regTree struct {
	Nodes []treeNode `json:"nodes"`
}

// predict routes a row to its leaf value. Rows with values at the
// threshold go left.
func (t *regTree) predict(row []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Leaf {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// treeParams are the regularized fitting controls for one tree.
type treeParams struct {
	maxDepth  int
	lambda    float64 // L2 on leaf weights
	alpha     float64 // L1 on leaf weights
	minLeaf   int
	colsample float64
}

// treeBuilder fits one regression tree to residuals. gains accumulates
// total split gain per feature for the importance report.
type treeBuilder struct {
	rows    [][]float64
	target  []float64
	params  treeParams
	columns []int // feature subset for this tree
	gains   map[int]float64
}

func newTreeBuilder(rows [][]float64, target []float64, columns []int, params treeParams, gains map[int]float64) *treeBuilder {
	if params.minLeaf < 1 {
		params.minLeaf = 1
	}
	return &treeBuilder{rows: rows, target: target, params: params, columns: columns, gains: gains}
}

// build fits the tree on the given row indices.
func (b *treeBuilder) build(indices []int) *regTree {
	t := &regTree{}
	b.grow(t, indices, 0)
	return t
}

// grow appends the subtree for the given rows and returns its node index.
func (b *treeBuilder) grow(t *regTree, indices []int, depth int) int {
	g, h := b.gradSum(indices)

	if depth >= b.params.maxDepth || len(indices) < 2*b.params.minLeaf {
		return b.appendLeaf(t, g, h)
	}

	feature, threshold, gain := b.bestSplit(indices, g, h)
	if gain <= 0 {
		return b.appendLeaf(t, g, h)
	}

	var left, right []int
	for _, i := range indices {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.params.minLeaf || len(right) < b.params.minLeaf {
		return b.appendLeaf(t, g, h)
	}

	b.gains[feature] += gain

	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: feature, Threshold: threshold})
	t.Nodes[node].Left = b.grow(t, left, depth+1)
	t.Nodes[node].Right = b.grow(t, right, depth+1)
	return node
}

func (b *treeBuilder) appendLeaf(t *regTree, g, h float64) int {
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Leaf: true, Value: leafWeight(g, h, b.params)})
	return node
}

// gradSum returns the residual sum and count over the rows. With a
// squared-error objective the hessian of each row is 1.
func (b *treeBuilder) gradSum(indices []int) (float64, float64) {
	var g float64
	for _, i := range indices {
		g += b.target[i]
	}
	return g, float64(len(indices))
}

// leafWeight applies soft-thresholded L1 then L2 shrinkage to the
// residual sum.
func leafWeight(g, h float64, p treeParams) float64 {
	mag := math.Abs(g) - p.alpha
	if mag <= 0 {
		return 0
	}
	w := mag / (h + p.lambda)
	if g < 0 {
		return -w
	}
	return w
}

// scoreHalf is the regularized gain contribution of one side of a split.
func scoreHalf(g, h, lambda, alpha float64) float64 {
	mag := math.Abs(g) - alpha
	if mag <= 0 {
		return 0
	}
	return mag * mag / (h + lambda)
}

// bestSplit scans the tree's feature subset for the threshold with the
// highest gain.
func (b *treeBuilder) bestSplit(indices []int, gTotal, hTotal float64) (int, float64, float64) {
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	parent := scoreHalf(gTotal, hTotal, b.params.lambda, b.params.alpha)

	for _, f := range b.columns {
		for _, threshold := range b.candidates(indices, f) {
			var gLeft, hLeft float64
			for _, i := range indices {
				if b.rows[i][f] <= threshold {
					gLeft += b.target[i]
					hLeft++
				}
			}
			hRight := hTotal - hLeft
			if hLeft < float64(b.params.minLeaf) || hRight < float64(b.params.minLeaf) {
				continue
			}
			gRight := gTotal - gLeft

			gain := (scoreHalf(gLeft, hLeft, b.params.lambda, b.params.alpha) +
				scoreHalf(gRight, hRight, b.params.lambda, b.params.alpha) - parent) / 2
			if gain > bestGain {
				bestFeature, bestThreshold, bestGain = f, threshold, gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// candidates returns up to maxSplitCandidates thresholds for a feature,
// taken between distinct sorted values.
func (b *treeBuilder) candidates(indices []int, feature int) []float64 {
	values := make([]float64, 0, len(indices))
	for _, i := range indices {
		values = append(values, b.rows[i][feature])
	}
	sort.Float64s(values)

	distinct := values[:0]
	for i, v := range values {
		if i == 0 || v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) < 2 {
		return nil
	}

	// Midpoints between neighbors; quantile-sample when too many.
	n := len(distinct) - 1
	step := 1
	if n > maxSplitCandidates {
		step = n / maxSplitCandidates
	}
	out := make([]float64, 0, maxSplitCandidates)
	for i := 0; i < n; i += step {
		out = append(out, (distinct[i]+distinct[i+1])/2)
	}
	return out
}
