// Package regression provides the regression capability the price model is
// trained with: a Regressor interface and a random forest of CART trees.
package regression

import (
	"errors"
	"fmt"
)

var (
	ErrNotFitted      = errors.New("regression: model is not fitted")
	ErrEmptyInput     = errors.New("regression: empty input")
	ErrLengthMismatch = errors.New("regression: X and y length mismatch")
	ErrWidthMismatch  = errors.New("regression: feature width mismatch")
)

// Predictor maps encoded rows to predicted values.
type Predictor interface {
	Predict(X [][]float64) ([]float64, error)
}

// Regressor is a Predictor that can be fitted.
type Regressor interface {
	Predictor
	Fit(X [][]float64, y []float64) error
}

// checkTrainingSet returns the row width of X after verifying that X is
// rectangular, non-empty and aligned with y.
func checkTrainingSet(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyInput
	}
	if len(y) != len(X) {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrLengthMismatch, len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return 0, ErrEmptyInput
	}
	if err := checkWidth(X, p); err != nil {
		return 0, err
	}
	return p, nil
}

func checkWidth(X [][]float64, p int) error {
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrWidthMismatch, i, len(row), p)
		}
	}
	return nil
}
