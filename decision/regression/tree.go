package regression

import (
	"fmt"
	"math/rand"
	"sort"
)

// leafImpurity is the node variance under which a node is not split.
const leafImpurity = 1e-7

// Node is one entry of a flattened tree. Leaves have Feature == -1.
// Internal nodes send x[Feature] <= Threshold to Left, the rest to Right.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
	Samples   int     `json:"n"`
}

func (n Node) isLeaf() bool { return n.Feature < 0 }

// Tree is a CART regression tree using the squared-error criterion.
type Tree struct {
	MaxDepth        int   `json:"max_depth"` // 0 => unlimited
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	MaxFeatures     int   `json:"max_features"` // 0 => all features
	RandomState     int64 `json:"random_state"`

	NFeatures int    `json:"n_features"`
	Nodes     []Node `json:"nodes"`

	// decrease holds the total squared-error reduction per feature.
	decrease []float64
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

func WithTreeMaxDepth(d int) TreeOption       { return func(t *Tree) { t.MaxDepth = d } }
func WithTreeMinSamplesSplit(n int) TreeOption { return func(t *Tree) { t.MinSamplesSplit = n } }
func WithTreeMinSamplesLeaf(n int) TreeOption  { return func(t *Tree) { t.MinSamplesLeaf = n } }
func WithTreeMaxFeatures(k int) TreeOption     { return func(t *Tree) { t.MaxFeatures = k } }
func WithTreeRandomState(s int64) TreeOption   { return func(t *Tree) { t.RandomState = s } }

// NewTree returns a tree that grows until leaves are pure.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on every row of X.
func (t *Tree) Fit(X [][]float64, y []float64) error {
	if _, err := checkTrainingSet(X, y); err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.fitIndices(X, y, idx)
	return nil
}

// fitIndices grows the tree on the rows listed in idx. Repeated indices
// act as sample weights, which is how bootstrap samples are passed in.
func (t *Tree) fitIndices(X [][]float64, y []float64, idx []int) {
	t.NFeatures = len(X[0])
	t.Nodes = t.Nodes[:0]
	t.decrease = make([]float64, t.NFeatures)
	b := &builder{
		tree: t,
		X:    X,
		y:    y,
		rnd:  rand.New(rand.NewSource(t.RandomState)),
	}
	b.grow(idx, 0)
}

// Predict walks each row to a leaf.
func (t *Tree) Predict(X [][]float64) ([]float64, error) {
	if len(t.Nodes) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkWidth(X, t.NFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = t.predictRow(x)
	}
	return out, nil
}

func (t *Tree) predictRow(x []float64) float64 {
	n := t.Nodes[0]
	for !n.isLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n.Value
}

// Importances returns the impurity decrease per feature normalized to sum
// to 1. A tree without any split reports all zeros.
func (t *Tree) Importances() []float64 {
	out := make([]float64, t.NFeatures)
	dec := t.decrease
	if len(dec) != t.NFeatures {
		dec = t.splitDecrease()
	}
	total := 0.0
	for _, d := range dec {
		total += d
	}
	if total <= 0 {
		return out
	}
	for i, d := range dec {
		out[i] = d / total
	}
	return out
}

// splitDecrease rebuilds the per-feature decrease of a tree decoded from
// JSON, where only node means and sample counts survive. The decrease of a
// split is n_l*n_r/n * (mean_l - mean_r)^2.
func (t *Tree) splitDecrease() []float64 {
	dec := make([]float64, t.NFeatures)
	for _, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		l, r := t.Nodes[n.Left], t.Nodes[n.Right]
		d := l.Value - r.Value
		dec[n.Feature] += float64(l.Samples) * float64(r.Samples) / float64(n.Samples) * d * d
	}
	return dec
}

// validate checks the structure of a decoded tree.
func (t *Tree) validate() error {
	if len(t.Nodes) == 0 {
		return ErrNotFitted
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		if n.Feature >= t.NFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, t.NFeatures)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

type builder struct {
	tree *Tree
	X    [][]float64
	y    []float64
	rnd  *rand.Rand
}

type split struct {
	feature   int
	threshold float64
	// pos is the number of sorted rows sent left.
	pos    int
	sorted []int
	loss   float64
}

func (b *builder) grow(idx []int, depth int) int {
	t := b.tree
	n := len(idx)

	mean := 0.0
	for _, i := range idx {
		mean += b.y[i]
	}
	mean /= float64(n)
	sse := 0.0
	for _, i := range idx {
		d := b.y[i] - mean
		sse += d * d
	}

	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: -1, Value: mean, Samples: n})

	if n < t.MinSamplesSplit || n < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) ||
		sse/float64(n) <= leafImpurity {
		return self
	}

	best, ok := b.bestSplit(idx, mean, sse)
	if !ok {
		return self
	}
	t.decrease[best.feature] += sse - best.loss

	left := b.grow(best.sorted[:best.pos], depth+1)
	right := b.grow(best.sorted[best.pos:], depth+1)
	t.Nodes[self].Feature = best.feature
	t.Nodes[self].Threshold = best.threshold
	t.Nodes[self].Left = left
	t.Nodes[self].Right = right
	return self
}

func (b *builder) features() []int {
	p := b.tree.NFeatures
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	k := b.tree.MaxFeatures
	if k > 0 && k < p {
		b.rnd.Shuffle(p, func(i, j int) { feats[i], feats[j] = feats[j], feats[i] })
		feats = feats[:k]
		sort.Ints(feats)
	}
	return feats
}

// bestSplit scans every candidate threshold of every candidate feature and
// returns the split with the lowest summed squared error. Targets are
// centred on the node mean to keep the running sums well conditioned.
func (b *builder) bestSplit(idx []int, mean, sse float64) (split, bool) {
	minLeaf := b.tree.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}
	n := len(idx)
	best := split{loss: sse}
	found := false

	for _, f := range b.features() {
		sorted := append([]int(nil), idx...)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var totSum, totSq float64
		for _, i := range sorted {
			d := b.y[i] - mean
			totSum += d
			totSq += d * d
		}

		var lSum, lSq float64
		for k := 1; k < n; k++ {
			d := b.y[sorted[k-1]] - mean
			lSum += d
			lSq += d * d

			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := b.X[sorted[k-1]][f], b.X[sorted[k]][f]
			if lo >= hi {
				continue
			}

			rSum, rSq := totSum-lSum, totSq-lSq
			loss := (lSq - lSum*lSum/float64(k)) + (rSq - rSum*rSum/float64(n-k))
			if loss < best.loss-1e-12*sse {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, pos: k, sorted: sorted, loss: loss}
				found = true
			}
		}
	}
	return best, found
}
