package regression

import (
	"errors"
	"testing"
)

func TestTree_StepFunction(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{10, 10, 20, 20}

	tree := NewTree()
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got, err := tree.Predict([][]float64{{1.5}, {2.5}, {3.5}, {100}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := []float64{10, 10, 20, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Predict[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(tree.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(tree.Nodes))
	}
}

func TestTree_MaxDepthAndMinLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{1, 2, 3, 4, 5, 6}

	stump := NewTree(WithTreeMaxDepth(1))
	if err := stump.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if len(stump.Nodes) != 3 {
		t.Errorf("depth-1 tree has %d nodes, want 3", len(stump.Nodes))
	}

	leafy := NewTree(WithTreeMinSamplesLeaf(3))
	if err := leafy.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for _, n := range leafy.Nodes {
		if n.isLeaf() && n.Samples < 3 {
			t.Errorf("leaf with %d samples, want >= 3", n.Samples)
		}
	}
}

func TestTree_Importances(t *testing.T) {
	X := [][]float64{{1, 7}, {2, 7}, {3, 7}, {4, 7}}
	y := []float64{0, 0, 5, 5}
	tree := NewTree()
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	imp := tree.Importances()
	if imp[0] != 1 || imp[1] != 0 {
		t.Errorf("Importances = %v, want [1 0]", imp)
	}
}

func TestTree_Errors(t *testing.T) {
	tree := NewTree()
	if _, err := tree.Predict([][]float64{{1}}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("unfitted Predict: err = %v", err)
	}
	if err := tree.Fit(nil, nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty Fit: err = %v", err)
	}
	if err := tree.Fit([][]float64{{1}, {2}}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("length mismatch: err = %v", err)
	}
	if err := tree.Fit([][]float64{{1}, {2, 3}}, []float64{1, 2}); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("ragged X: err = %v", err)
	}

	_ = tree.Fit([][]float64{{1}, {2}}, []float64{1, 2})
	if _, err := tree.Predict([][]float64{{1, 2}}); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("wide row: err = %v", err)
	}
}
