package handlers

import (
	"math"
	"sort"

	"nfl-projections-go/models"
)

// sortRows orders rows by col. Text columns compare as strings; NaN sorts
// last in either direction.
func sortRows(rows []models.ProjectionRow, col string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value(col), rows[j].Value(col)
		switch av := a.(type) {
		case string:
			if ascending {
				return av < b.(string)
			}
			return av > b.(string)
		case int:
			if ascending {
				return av < b.(int)
			}
			return av > b.(int)
		}
		af, bf := a.(float64), b.(float64)
		if math.IsNaN(af) {
			return false
		}
		if math.IsNaN(bf) {
			return true
		}
		if ascending {
			return af < bf
		}
		return af > bf
	})
}
