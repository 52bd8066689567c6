package pipeline

import (
	"nfl-projections-go/models"
)

// FilterByPositionalGroup keeps the rows of cat's positions with the
// category's stat columns, depth and injury features.
func FilterByPositionalGroup(rows []Row, cat models.Category, injuryNames []string) []Row {
	positions := make(map[string]struct{})
	for _, p := range models.CategoryPositions[cat] {
		positions[p] = struct{}{}
	}

	cols := append([]string{}, models.StatColumnsByCategory[cat]...)
	cols = append(cols, DepthColumn)
	cols = append(cols, injuryNames...)

	var out []Row
	for _, r := range rows {
		if _, ok := positions[r.Position]; !ok {
			continue
		}
		out = append(out, r.project(cols))
	}
	return out
}

// BuildTargetTables creates one table per target from the positional groups,
// plus the defense table from team stats. Targets drawn from both groups take
// their union, one row per player-week.
func BuildTargetTables(passing, rushingReceiving []Row, teams []models.TeamWeek, injuryNames []string) map[string]*Table {
	out := make(map[string]*Table, len(models.Targets)+1)

	for _, target := range models.Targets {
		cols := append([]string{}, target.Inputs...)
		if !contains(cols, target.Stat) {
			cols = append(cols, target.Stat)
		}
		cols = append(cols, DepthColumn)
		cols = append(cols, injuryNames...)

		var source []Row
		switch target.Category {
		case models.CategoryPassing:
			source = passing
		case models.CategoryRushingReceiving:
			source = rushingReceiving
		case models.CategoryPassingOrRushRec:
			source = unionByKey(rushingReceiving, passing)
		}

		table := &Table{Target: target, Rows: make([]Row, 0, len(source))}
		for _, r := range source {
			table.Rows = append(table.Rows, r.project(cols))
		}
		out[target.Code] = table
	}

	def := &Table{Target: models.DefenseTarget, Rows: make([]Row, 0, len(teams))}
	for _, tw := range teams {
		row := Row{
			Team:         tw.Team,
			OpponentTeam: tw.OpponentTeam,
			Season:       tw.Season,
			Week:         tw.Week,
			Values:       make(map[string]float64, len(models.DefenseTarget.Inputs)),
		}
		for _, c := range models.DefenseTarget.Inputs {
			row.Values[c] = tw.Stat(c)
		}
		def.Rows = append(def.Rows, row)
	}
	out[models.DefenseTargetCode] = def

	return out
}

// unionByKey concatenates a and b, dropping rows of b whose player-week is
// already present. Columns present in either copy are merged.
func unionByKey(a, b []Row) []Row {
	pos := make(map[Key]int, len(a)+len(b))
	out := make([]Row, 0, len(a)+len(b))
	for _, rows := range [][]Row{a, b} {
		for _, r := range rows {
			k := r.Key()
			if i, ok := pos[k]; ok {
				for c, v := range r.Values {
					if _, has := out[i].Values[c]; !has {
						out[i].Values[c] = v
					}
				}
				continue
			}
			pos[k] = len(out)
			out = append(out, r.clone())
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
