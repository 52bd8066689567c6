package pipeline

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes columns to zero mean and unit population variance.
type Scaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

// FitScaler learns per-column mean and population std, ignoring missing
// values. A constant or empty column gets scale 1.
func FitScaler(t *Table, cols []string) *Scaler {
	s := &Scaler{
		Columns: append([]string{}, cols...),
		Mean:    make([]float64, len(cols)),
		Scale:   make([]float64, len(cols)),
	}
	for i, c := range cols {
		s.Scale[i] = 1
		present := presentValues(t.Column(c))
		if len(present) == 0 {
			continue
		}
		mean, std := stat.PopMeanStdDev(present, nil)
		s.Mean[i] = mean
		if std > 0 {
			s.Scale[i] = std
		}
	}
	return s
}

// Transform standardizes t in place. Missing values stay missing.
func (s *Scaler) Transform(t *Table) {
	for i := range t.Rows {
		for ci, c := range s.Columns {
			v := t.Rows[i].Get(c)
			if math.IsNaN(v) {
				t.Rows[i].Set(c, math.NaN())
				continue
			}
			t.Rows[i].Set(c, (v-s.Mean[ci])/s.Scale[ci])
		}
	}
}

// Scale fits a scaler on t and applies it.
func Scale(t *Table, cols []string) *Scaler {
	s := FitScaler(t, cols)
	s.Transform(t)
	return s
}

func presentValues(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
