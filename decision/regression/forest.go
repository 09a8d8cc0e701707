package regression

import (
	"fmt"
	"math/rand"
	"sync"
)

// Forest is a bagged ensemble of regression trees. Its prediction is the
// mean of the tree predictions.
type Forest struct {
	NEstimators     int   `json:"n_estimators"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	MaxFeatures     int   `json:"max_features"`
	Bootstrap       bool  `json:"bootstrap"`
	RandomState     int64 `json:"random_state"`

	NFeatures int     `json:"n_features"`
	Trees     []*Tree `json:"trees"`
}

// ForestOption configures a Forest.
type ForestOption func(*Forest)

func WithNEstimators(n int) ForestOption     { return func(f *Forest) { f.NEstimators = n } }
func WithMaxDepth(d int) ForestOption        { return func(f *Forest) { f.MaxDepth = d } }
func WithMinSamplesSplit(n int) ForestOption { return func(f *Forest) { f.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) ForestOption  { return func(f *Forest) { f.MinSamplesLeaf = n } }
func WithMaxFeatures(k int) ForestOption     { return func(f *Forest) { f.MaxFeatures = k } }
func WithBootstrap(b bool) ForestOption      { return func(f *Forest) { f.Bootstrap = b } }
func WithRandomState(s int64) ForestOption   { return func(f *Forest) { f.RandomState = s } }

// NewForest returns a forest with 100 trees of depth at most 10, at least
// 5 samples to split, 2 per leaf, bootstrap sampling and seed 42.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		NEstimators:     100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains every tree concurrently. Tree i draws its bootstrap sample and
// feature subsets from seed RandomState+i, so results do not depend on
// scheduling.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	p, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}
	if f.NEstimators < 1 {
		return fmt.Errorf("regression: n_estimators must be positive, got %d", f.NEstimators)
	}

	n := len(X)
	trees := make([]*Tree, f.NEstimators)
	var wg sync.WaitGroup
	for i := 0; i < f.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			seed := f.RandomState + int64(idx)
			rnd := rand.New(rand.NewSource(seed))

			sample := make([]int, n)
			for j := range sample {
				if f.Bootstrap {
					sample[j] = rnd.Intn(n)
				} else {
					sample[j] = j
				}
			}

			tree := NewTree(
				WithTreeMaxDepth(f.MaxDepth),
				WithTreeMinSamplesSplit(f.MinSamplesSplit),
				WithTreeMinSamplesLeaf(f.MinSamplesLeaf),
				WithTreeMaxFeatures(f.MaxFeatures),
				WithTreeRandomState(seed),
			)
			tree.fitIndices(X, y, sample)
			trees[idx] = tree
		}(i)
	}
	wg.Wait()

	f.Trees = trees
	f.NFeatures = p
	return nil
}

// Predict averages the tree predictions for each row.
func (f *Forest) Predict(X [][]float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkWidth(X, f.NFeatures); err != nil {
		return nil, err
	}

	perTree := make([][]float64, len(f.Trees))
	var wg sync.WaitGroup
	for i, t := range f.Trees {
		wg.Add(1)
		go func(i int, t *Tree) {
			defer wg.Done()
			preds := make([]float64, len(X))
			for r, x := range X {
				preds[r] = t.predictRow(x)
			}
			perTree[i] = preds
		}(i, t)
	}
	wg.Wait()

	// Sum in tree order so the result is bit-for-bit reproducible.
	out := make([]float64, len(X))
	for _, preds := range perTree {
		for r, v := range preds {
			out[r] += v
		}
	}
	for r := range out {
		out[r] /= float64(len(f.Trees))
	}
	return out, nil
}

// FeatureImportances is the mean of the normalized per-tree importances,
// renormalized to sum to 1.
func (f *Forest) FeatureImportances() ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, f.NFeatures)
	for _, t := range f.Trees {
		for j, v := range t.Importances() {
			out[j] += v
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out, nil
}

// Validate checks a forest decoded from an artifact.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return ErrNotFitted
	}
	for i, t := range f.Trees {
		if t == nil {
			return fmt.Errorf("regression: tree %d is missing", i)
		}
		if t.NFeatures != f.NFeatures {
			return fmt.Errorf("%w: tree %d has %d features, forest %d", ErrWidthMismatch, i, t.NFeatures, f.NFeatures)
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("regression: tree %d: %w", i, err)
		}
	}
	return nil
}
