package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"
)

const (
	matrixTargetKey   = "nfl.target"
	matrixFeaturesKey = "nfl.features"
)

// FeatureRow is one training example.
type FeatureRow struct {
	PlayerID string    `parquet:"player_id"`
	Season   int32     `parquet:"season"`
	Week     int32     `parquet:"week"`
	Label    float64   `parquet:"label"`
	Features []float64 `parquet:"features,list"`
}

// Matrix is a dense training matrix with named features.
type Matrix struct {
	Target       string
	FeatureNames []string
	Rows         []FeatureRow
}

// BuildMatrix extracts features and label from t. Missing values become 0.
func BuildMatrix(t *Table, features []string, label string) Matrix {
	m := Matrix{
		Target:       t.Target.Code,
		FeatureNames: append([]string{}, features...),
		Rows:         make([]FeatureRow, len(t.Rows)),
	}
	for i, r := range t.Rows {
		x := make([]float64, len(features))
		for j, f := range features {
			x[j] = zeroIfNaN(r.Get(f))
		}
		m.Rows[i] = FeatureRow{
			PlayerID: r.PlayerID,
			Season:   int32(r.Season),
			Week:     int32(r.Week),
			Label:    zeroIfNaN(r.Get(label)),
			Features: x,
		}
	}
	return m
}

// XY returns the features and labels as dense slices.
func (m Matrix) XY() ([][]float64, []float64) {
	X := make([][]float64, len(m.Rows))
	y := make([]float64, len(m.Rows))
	for i, r := range m.Rows {
		X[i] = r.Features
		y[i] = r.Label
	}
	return X, y
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// WriteMatrix writes m as snappy-compressed parquet. Target and feature
// names travel in the file's key/value metadata.
func WriteMatrix(w io.Writer, m Matrix) error {
	names, err := json.Marshal(m.FeatureNames)
	if err != nil {
		return err
	}
	pw := parquet.NewGenericWriter[FeatureRow](w,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata(matrixTargetKey, m.Target),
		parquet.KeyValueMetadata(matrixFeaturesKey, string(names)),
	)
	if _, err := pw.Write(m.Rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("writing matrix rows: %w", err)
	}
	return pw.Close()
}

// WriteMatrixFile writes m to path.
func WriteMatrixFile(path string, m Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMatrix(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadMatrix reads a matrix written by WriteMatrix.
func ReadMatrix(r io.ReaderAt, size int64) (Matrix, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return Matrix{}, fmt.Errorf("opening matrix: %w", err)
	}

	var m Matrix
	m.Target, _ = f.Lookup(matrixTargetKey)
	if raw, ok := f.Lookup(matrixFeaturesKey); ok {
		if err := json.Unmarshal([]byte(raw), &m.FeatureNames); err != nil {
			return Matrix{}, fmt.Errorf("decoding feature names: %w", err)
		}
	}

	pr := parquet.NewGenericReader[FeatureRow](f)
	defer pr.Close()

	m.Rows = make([]FeatureRow, pr.NumRows())
	n, err := pr.Read(m.Rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return Matrix{}, fmt.Errorf("reading matrix rows: %w", err)
	}
	m.Rows = m.Rows[:n]
	return m, nil
}

// ReadMatrixFile reads a matrix from path.
func ReadMatrixFile(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return Matrix{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Matrix{}, err
	}
	return ReadMatrix(f, st.Size())
}
