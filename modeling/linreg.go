// Package modeling fits, evaluates and persists the per-target linear
// regression models.
package modeling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrFeatureMismatch = errors.New("feature count mismatch")
	ErrNoSamples       = errors.New("no training samples")
)

// LinearRegression is an ordinary least squares model with intercept.
type LinearRegression struct {
	Features     []string
	Coefficients []float64
	Intercept    float64
}

// FitLinearRegression solves min ||y - Xb - c||. X and y are centered so the
// intercept drops out, then the minimum-norm least squares solution is taken
// from the SVD, discarding singular values below eps*max(m,n) times the
// largest one. Collinear and constant features therefore get stable,
// finite weights.
func FitLinearRegression(X [][]float64, y []float64, features []string) (*LinearRegression, error) {
	m := len(X)
	if m == 0 {
		return nil, ErrNoSamples
	}
	if len(y) != m {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrFeatureMismatch, m, len(y))
	}
	n := len(features)
	for i, row := range X {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureMismatch, i, len(row), n)
		}
	}

	yMean := stat.Mean(y, nil)
	model := &LinearRegression{
		Features:     append([]string{}, features...),
		Coefficients: make([]float64, n),
		Intercept:    yMean,
	}
	if n == 0 {
		return model, nil
	}

	xMean := make([]float64, n)
	a := mat.NewDense(m, n, nil)
	for j := 0; j < n; j++ {
		col := make([]float64, m)
		for i := range X {
			col[i] = X[i][j]
		}
		xMean[j] = stat.Mean(col, nil)
		floats.AddConst(-xMean[j], col)
		a.SetCol(j, col)
	}
	yc := make([]float64, m)
	copy(yc, y)
	floats.AddConst(-yMean, yc)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("SVD factorization failed")
	}
	rcond := math.Nextafter(1, 2) - 1
	rank := svd.Rank(rcond * float64(max(m, n)))
	if rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, mat.NewVecDense(m, yc), rank)
		for j := 0; j < n; j++ {
			model.Coefficients[j] = beta.AtVec(j)
		}
	}

	model.Intercept = yMean - floats.Dot(xMean, model.Coefficients)
	return model, nil
}

// Predict returns X*b + c for every row.
func (lr *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(lr.Coefficients) {
			return nil, fmt.Errorf("%w: row %d has %d values, model has %d", ErrFeatureMismatch, i, len(row), len(lr.Coefficients))
		}
		out[i] = floats.Dot(row, lr.Coefficients) + lr.Intercept
	}
	return out, nil
}
