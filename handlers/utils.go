package handlers

import (
	"nfl-projections-go/models"
)

// filterRows keeps the rows for which keep returns true
func filterRows(rows []models.ProjectionRow, keep func(models.ProjectionRow) bool) []models.ProjectionRow {
	filtered := make([]models.ProjectionRow, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
