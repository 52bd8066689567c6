package pipeline

import (
	"fmt"
	"math"
)

// RollingColumn names the shifted rolling mean of col.
func RollingColumn(col string, period int) string {
	return fmt.Sprintf("%s_roll%d_shift", col, period)
}

// CumAvgColumn and CumStdColumn name the shifted expanding statistics.
func CumAvgColumn(prefix, col string) string { return prefix + col + "_cum_avg" }
func CumStdColumn(prefix, col string) string { return prefix + col + "_cum_std" }

// DisplayAvgColumn and DisplayStdColumn hold unscaled copies of a target's
// own cumulative statistics.
func DisplayAvgColumn(stat string) string { return stat + "_cum_avg_copy" }
func DisplayStdColumn(stat string) string { return stat + "_cum_std_copy" }

// Rolling sorts t by (season, week, tiebreak) and adds, per group, the mean
// of the trailing period games shifted by one game, so a row only sees games
// before it. Missing values inside the window are skipped; a window with no
// values yields NaN. It returns the new column names.
func Rolling(t *Table, cols []string, group GroupFunc, tiebreak func(Row) string, period int) []string {
	t.sortRows(tiebreak)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = RollingColumn(c, period)
	}

	for _, idx := range t.groups(group) {
		for ci, c := range cols {
			means := make([]float64, len(idx))
			for k := range idx {
				sum, n := 0.0, 0
				for j := max(0, k-period+1); j <= k; j++ {
					v := t.Rows[idx[j]].Get(c)
					if !math.IsNaN(v) {
						sum += v
						n++
					}
				}
				if n == 0 {
					means[k] = math.NaN()
				} else {
					means[k] = sum / float64(n)
				}
			}
			for k, ri := range idx {
				t.Rows[ri].Set(names[ci], shifted(means, k))
			}
		}
	}
	return names
}

// Cumulative sorts t by (season, week, tiebreak) and adds, per group, the
// expanding mean and sample standard deviation shifted by one game. A mean
// needs one prior value and a standard deviation two. Column names carry
// prefix. It returns the mean and std column names.
func Cumulative(t *Table, cols []string, group GroupFunc, tiebreak func(Row) string, prefix string) (avgCols, stdCols []string) {
	t.sortRows(tiebreak)
	avgCols = make([]string, len(cols))
	stdCols = make([]string, len(cols))
	for i, c := range cols {
		avgCols[i] = CumAvgColumn(prefix, c)
		stdCols[i] = CumStdColumn(prefix, c)
	}

	for _, idx := range t.groups(group) {
		for ci, c := range cols {
			means := make([]float64, len(idx))
			stds := make([]float64, len(idx))
			// Welford's running moments over non-missing values.
			n, mean, m2 := 0, 0.0, 0.0
			for k, ri := range idx {
				if v := t.Rows[ri].Get(c); !math.IsNaN(v) {
					n++
					d := v - mean
					mean += d / float64(n)
					m2 += d * (v - mean)
				}
				switch {
				case n == 0:
					means[k], stds[k] = math.NaN(), math.NaN()
				case n == 1:
					means[k], stds[k] = mean, math.NaN()
				default:
					means[k], stds[k] = mean, math.Sqrt(m2/float64(n-1))
				}
			}
			for k, ri := range idx {
				t.Rows[ri].Set(avgCols[ci], shifted(means, k))
				t.Rows[ri].Set(stdCols[ci], shifted(stds, k))
			}
		}
	}
	return avgCols, stdCols
}

func shifted(values []float64, k int) float64 {
	if k == 0 {
		return math.NaN()
	}
	return values[k-1]
}

// KeepDisplayCopies stores unscaled copies of the target stat's cumulative
// mean and std under DisplayAvgColumn / DisplayStdColumn.
func KeepDisplayCopies(t *Table, stat string) {
	avg, std := CumAvgColumn("", stat), CumStdColumn("", stat)
	for i := range t.Rows {
		t.Rows[i].Set(DisplayAvgColumn(stat), t.Rows[i].Get(avg))
		t.Rows[i].Set(DisplayStdColumn(stat), t.Rows[i].Get(std))
	}
}
