package pipeline

import (
	"math"
	"strconv"

	"nfl-projections-go/models"
)

// MergePlayers left-joins weekly player rows with the encoded injuries and
// the depth chart on (player_id, season, week). Unmatched features are NaN.
func MergePlayers(players []models.PlayerWeek, injuries InjuryFeatures, depth map[Key]float64) []Row {
	out := make([]Row, 0, len(players))
	for _, p := range players {
		row := Row{
			PlayerID:     p.PlayerID,
			PlayerName:   p.PlayerName,
			DisplayName:  p.PlayerDisplayName,
			Position:     p.Position,
			Team:         p.Team,
			OpponentTeam: p.OpponentTeam,
			Season:       p.Season,
			Week:         p.Week,
			Values:       make(map[string]float64, len(p.Stats)+len(injuries.Names)+1),
		}
		for k, v := range p.Stats {
			row.Values[k] = v
		}

		key := row.Key()
		if d, ok := depth[key]; ok {
			row.Values[DepthColumn] = d
		} else {
			row.Values[DepthColumn] = math.NaN()
		}

		inj := injuries.ByKey[key]
		for _, name := range injuries.Names {
			if v, ok := inj[name]; ok {
				row.Values[name] = v
			} else {
				row.Values[name] = math.NaN()
			}
		}
		out = append(out, row)
	}
	return out
}

// MergeDefense left-joins the defense table's columns onto every row of t,
// matching the row's opponent with the defending team on season and week.
// When the defense table repeats a team-week the first row is used.
func MergeDefense(t *Table, def *Table, cols []string) {
	index := make(map[string]int, len(def.Rows))
	for i, r := range def.Rows {
		k := teamWeekKey(r.Team, r.Season, r.Week)
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	for i := range t.Rows {
		row := &t.Rows[i]
		j, ok := index[teamWeekKey(row.OpponentTeam, row.Season, row.Week)]
		for _, c := range cols {
			if ok {
				row.Set(c, def.Rows[j].Get(c))
			} else {
				row.Set(c, math.NaN())
			}
		}
	}
}

func teamWeekKey(team string, season, week int) string {
	return team + "|" + strconv.Itoa(season) + "|" + strconv.Itoa(week)
}
