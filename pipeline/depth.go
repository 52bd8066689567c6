package pipeline

import (
	"math"

	"nfl-projections-go/models"
)

// DepthColumn is the depth chart rank feature.
const DepthColumn = "depth_team"

// FilterDepth keeps one rank per player-week. Entries without season or week
// are dropped, missing ranks take the mean rank of the remaining entries, and
// a player listed more than once keeps his best (lowest) rank.
func FilterDepth(entries []models.DepthChartEntry) map[Key]float64 {
	sum, n := 0.0, 0
	for _, e := range entries {
		if e.HasSeasonWeek && !math.IsNaN(e.DepthTeam) {
			sum += e.DepthTeam
			n++
		}
	}
	mean := math.NaN()
	if n > 0 {
		mean = sum / float64(n)
	}

	out := make(map[Key]float64)
	for _, e := range entries {
		if !e.HasSeasonWeek {
			continue
		}
		depth := e.DepthTeam
		if math.IsNaN(depth) {
			depth = mean
		}
		k := Key{PlayerID: e.PlayerID, Season: e.Season, Week: e.Week}
		if prev, ok := out[k]; ok && !(depth < prev) {
			continue
		}
		out[k] = depth
	}
	return out
}
