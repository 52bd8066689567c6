package modeling

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RMSE is the root mean squared error. Empty input is NaN.
func RMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	return floats.Distance(yTrue, yPred, 2) / math.Sqrt(float64(len(yTrue)))
}

// R2 is the coefficient of determination. A constant truth scores 1 when
// predicted exactly and 0 otherwise; fewer than two samples is NaN.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) < 2 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	mean := stat.Mean(yTrue, nil)
	ssRes, ssTot := 0.0, 0.0
	for i := range yTrue {
		r := yTrue[i] - yPred[i]
		d := yTrue[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
