package modeling

import (
	"math"
	"math/rand"
)

const (
	// SplitSeed fixes the train/validation shuffle.
	SplitSeed = 42
	// ValidationFraction is the share of rows held out for validation.
	ValidationFraction = 0.2
)

// TrainTestSplit shuffles 0..n-1 with seed and returns the train and test
// index sets. The test set holds ceil(testFraction*n) rows.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	if n == 0 {
		return nil, nil
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest > n {
		nTest = n
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest]
}

func take[T any](values []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
