package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrInvalidRatio = errors.New("test ratio must be between 0 and 1 exclusive")
	ErrTooFewRows   = errors.New("need at least two rows to split")
)

// Split shuffles records with a seeded source and returns disjoint train
// and test slices. The test slice holds ceil(n*ratio) rows, clamped so
// both sides are non-empty. The same seed always yields the same split.
func Split(records []CleanedRecord, ratio float64, seed int64) (train, test []CleanedRecord, err error) {
	if ratio <= 0 || ratio >= 1 || math.IsNaN(ratio) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	n := len(records)
	if n < 2 {
		return nil, nil, ErrTooFewRows
	}

	nTest := int(math.Ceil(float64(n) * ratio))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]CleanedRecord, 0, nTest)
	train = make([]CleanedRecord, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, records[idx])
		} else {
			train = append(train, records[idx])
		}
	}
	return train, test, nil
}
