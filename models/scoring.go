package models

import (
	"errors"
	"fmt"
)

// ErrMissingProjection is returned when a points calculation needs a stat
// column the table does not have.
var ErrMissingProjection = errors.New("missing projection column")

// ScoringWeights maps a stat column to fantasy points per unit.
type ScoringWeights map[string]float64

// DefaultScoringWeights is the standard scoring system for QB/RB/WR/TE.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		"rushing_yards":          0.1,
		"rushing_tds":            6,
		"receiving_yards":        0.1,
		"receiving_tds":          6,
		"receptions":             0.5,
		"passing_yards":          0.04,
		"passing_tds":            4,
		"rushing_fumbles_lost":   -2,
		"receiving_fumbles_lost": -2,
		"passing_interceptions":  -2,
	}
}

// Merge returns a copy of w with overrides applied.
func (w ScoringWeights) Merge(overrides map[string]float64) ScoringWeights {
	out := make(ScoringWeights, len(w)+len(overrides))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Points sums weight*value over every weighted stat. lookup reports
// whether the stat exists; a missing stat is an error.
func (w ScoringWeights) Points(lookup func(stat string) (float64, bool)) (float64, error) {
	total := 0.0
	for stat, weight := range w {
		v, ok := lookup(stat)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingProjection, stat)
		}
		total += weight * v
	}
	return total, nil
}
