// Package pipeline turns weekly player, team, injury and depth chart tables
// into per-target feature tables.
package pipeline

import (
	"math"
	"sort"
	"strconv"

	"nfl-projections-go/models"
)

// Key identifies one player-week.
type Key struct {
	PlayerID string
	Season   int
	Week     int
}

// Row is one player-week (or team-week for the defense table). Numeric
// columns live in Values; a missing value is NaN or absent.
type Row struct {
	PlayerID     string
	PlayerName   string
	DisplayName  string
	Position     string
	Team         string
	OpponentTeam string
	Season       int
	Week         int
	Values       map[string]float64
}

// Key returns the player-week key.
func (r Row) Key() Key {
	return Key{PlayerID: r.PlayerID, Season: r.Season, Week: r.Week}
}

// Get returns a numeric column, NaN when absent.
func (r Row) Get(col string) float64 {
	if v, ok := r.Values[col]; ok {
		return v
	}
	return math.NaN()
}

// Set assigns a numeric column.
func (r *Row) Set(col string, v float64) {
	if r.Values == nil {
		r.Values = make(map[string]float64)
	}
	r.Values[col] = v
}

// project copies r keeping only cols; absent cols become NaN.
func (r Row) project(cols []string) Row {
	out := r
	out.Values = make(map[string]float64, len(cols))
	for _, c := range cols {
		out.Values[c] = r.Get(c)
	}
	return out
}

func (r Row) clone() Row {
	out := r
	out.Values = make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// Table is the feature table of one target.
type Table struct {
	Target models.Target
	Rows   []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns a numeric column in row order.
func (t *Table) Column(col string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(col)
	}
	return out
}

// HasColumn reports whether any row carries col.
func (t *Table) HasColumn(col string) bool {
	for _, r := range t.Rows {
		if _, ok := r.Values[col]; ok {
			return true
		}
	}
	return false
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := &Table{Target: t.Target, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.clone()
	}
	return out
}

// Filter returns a copy holding the rows for which keep is true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Target: t.Target}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r.clone())
		}
	}
	return out
}

// GroupFunc maps a row to its window group.
type GroupFunc func(Row) string

// BySeasonPlayer groups one player's games within a season.
func BySeasonPlayer(r Row) string { return strconv.Itoa(r.Season) + "|" + r.PlayerID }

// ByOpponentPlayer groups one player's games against one opponent, across
// seasons.
func ByOpponentPlayer(r Row) string { return r.OpponentTeam + "|" + r.PlayerID }

// BySeasonTeam groups one team's games within a season.
func BySeasonTeam(r Row) string { return strconv.Itoa(r.Season) + "|" + r.Team }

// SortKeyPlayer and SortKeyTeam break (season, week) ties.
func SortKeyPlayer(r Row) string { return r.PlayerID }
func SortKeyTeam(r Row) string   { return r.Team }

// sortRows orders rows by (season, week, tiebreak); equal rows keep their
// relative order.
func (t *Table) sortRows(tiebreak func(Row) string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return tiebreak(a) < tiebreak(b)
	})
}

// groups returns row indexes per group, each in table order.
func (t *Table) groups(group GroupFunc) [][]int {
	index := make(map[string]int)
	var out [][]int
	for i, r := range t.Rows {
		g := group(r)
		pos, ok := index[g]
		if !ok {
			pos = len(out)
			index[g] = pos
			out = append(out, nil)
		}
		out[pos] = append(out[pos], i)
	}
	return out
}
