package handlers

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"nfl-projections-go/models"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sahilm/fuzzy"
	"gonum.org/v1/gonum/stat"
)

// Sort columns offered by the dashboard, first one is the default.
var SortChoices = []string{
	"True rushing_yards", "Projected rushing_yards",
	"True receiving_yards", "Projected receiving_yards",
	"True passing_yards", "Projected passing_yards",
	"True Points", "Projected Points",
}

var sortFallbacks = []string{"True rushing_yards", "Projected rushing_yards"}

// NoSelectionHint is shown instead of the table until a week and a position
// are chosen.
const NoSelectionHint = "Select at least one week and one position to show projections."

// DashboardQuery holds the dashboard filters.
type DashboardQuery struct {
	Weeks             []int    `json:"weeks"`
	Positions         []string `json:"positions"`
	MinRushingYards   float64  `json:"min_rsh_yards"`
	MinReceivingYards float64  `json:"min_rc_yards"`
	MinPassingYards   float64  `json:"min_p_yards"`
	SortBy            string   `json:"sort_by"`
	Ascending         bool     `json:"ascending"`
	Columns           []string `json:"columns"`
	Search            string   `json:"q"`
}

// ParseDashboardQuery reads filters from query or form values. Weeks,
// positions and columns may repeat or be comma separated.
func ParseDashboardQuery(v url.Values) (DashboardQuery, error) {
	q := DashboardQuery{
		SortBy:    strings.TrimSpace(v.Get("sort_by")),
		Positions: listValues(v["position"]),
		Columns:   listValues(v["column"]),
		Search:    strings.TrimSpace(v.Get("q")),
	}
	if q.SortBy == "" {
		q.SortBy = SortChoices[0]
	}

	switch strings.ToLower(v.Get("sort_order")) {
	case "", "desc", "descending":
	case "asc", "ascending":
		q.Ascending = true
	default:
		return q, fmt.Errorf("%w: sort_order %q", models.ErrInvalidOption, v.Get("sort_order"))
	}

	for _, s := range listValues(v["week"]) {
		w, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("%w: week %q", models.ErrInvalidOption, s)
		}
		q.Weeks = append(q.Weeks, w)
	}

	for key, dst := range map[string]*float64{
		"min_rsh_yards": &q.MinRushingYards,
		"min_rc_yards":  &q.MinReceivingYards,
		"min_p_yards":   &q.MinPassingYards,
	} {
		raw := strings.TrimSpace(v.Get(key))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) {
			return q, fmt.Errorf("%w: %s %q", models.ErrInvalidOption, key, raw)
		}
		*dst = f
	}
	return q, nil
}

func listValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, s := range strings.Split(r, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// FilterProjections applies q to rows: values are rounded to 2 decimals,
// then week, position, minimum-yard and name filters run, then the sort.
// Empty week or position lists do not filter.
func FilterProjections(rows []models.ProjectionRow, q DashboardQuery) []models.ProjectionRow {
	out := make([]models.ProjectionRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, roundRow(r))
	}

	out = filterRows(out, func(r models.ProjectionRow) bool {
		if len(q.Weeks) > 0 && !containsInt(q.Weeks, r.Week) {
			return false
		}
		if len(q.Positions) > 0 && !containsString(q.Positions, r.Position) {
			return false
		}
		return r.TrueRushingYards >= q.MinRushingYards &&
			r.TrueReceivingYards >= q.MinReceivingYards &&
			r.TruePassingYards >= q.MinPassingYards
	})

	if q.Search != "" {
		out = searchRows(out, q.Search)
	}

	sortRows(out, resolveSortColumn(q.SortBy), q.Ascending)
	return out
}

func resolveSortColumn(col string) string {
	if models.HasColumn(col) {
		return col
	}
	for _, c := range sortFallbacks {
		if models.HasColumn(c) {
			return c
		}
	}
	return models.KeyColumns[0]
}

func roundRow(r models.ProjectionRow) models.ProjectionRow {
	for _, col := range models.MetricColumns() {
		v, _ := r.Metric(col)
		_ = r.SetMetric(col, math.Round(v*100)/100)
	}
	return r
}

type playerNames []models.ProjectionRow

func (p playerNames) String(i int) string { return p[i].PlayerDisplayName }
func (p playerNames) Len() int            { return len(p) }

// searchRows keeps rows whose display name fuzzy-matches the query.
func searchRows(rows []models.ProjectionRow, query string) []models.ProjectionRow {
	matches := fuzzy.FindFrom(query, playerNames(rows))
	keep := make(map[int]bool, len(matches))
	for _, m := range matches {
		keep[m.Index] = true
	}
	out := rows[:0:0]
	for i, r := range rows {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// SelectedColumns returns the requested columns in table order, or every
// column when none of the requested ones exist.
func SelectedColumns(requested []string) []string {
	all := models.ProjectionColumns()
	if len(requested) == 0 {
		return all
	}
	var out []string
	for _, c := range all {
		if containsString(requested, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// DashboardCell is one rendered table cell.
type DashboardCell struct {
	Text       string
	Background string
}

// DashboardView is the data behind the dashboard template.
type DashboardView struct {
	Query       DashboardQuery
	Weeks       []int
	Positions   []string
	AllColumns  []string
	SortChoices []string
	Columns     []string
	Rows        [][]DashboardCell
	Total       int
	Hint        string
	Source      string
	LoadedAt    string
}

// BuildDashboardView filters rows for display and colors every metric
// column by its z-score across the shown rows.
func BuildDashboardView(rows []models.ProjectionRow, q DashboardQuery) DashboardView {
	view := DashboardView{
		Query:       q,
		Weeks:       distinctWeeks(rows),
		Positions:   distinctPositions(rows),
		AllColumns:  models.ProjectionColumns(),
		SortChoices: SortChoices,
		Columns:     SelectedColumns(q.Columns),
	}
	if len(q.Weeks) == 0 || len(q.Positions) == 0 {
		view.Hint = NoSelectionHint
		return view
	}

	shown := FilterProjections(rows, q)
	view.Total = len(shown)
	view.Rows = make([][]DashboardCell, len(shown))
	for i := range view.Rows {
		view.Rows[i] = make([]DashboardCell, len(view.Columns))
	}

	for j, col := range view.Columns {
		colored := !containsString(models.KeyColumns, col)
		var colors []string
		if colored {
			values := make([]float64, len(shown))
			for i := range shown {
				values[i], _ = shown[i].Metric(col)
			}
			colors = ColorsFromZ(ZScores(values))
		}
		for i := range shown {
			cell := DashboardCell{Text: formatValue(shown[i].Value(col))}
			if colored {
				cell.Background = colors[i]
			}
			view.Rows[i][j] = cell
		}
	}
	return view
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', 2, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// ZScores standardizes values with their mean and sample standard deviation.
// Fewer than two values or zero spread give NaN.
func ZScores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	mean, std := stat.MeanStdDev(values, nil)
	for i, v := range values {
		if std == 0 || math.IsNaN(std) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (v - mean) / std
	}
	return out
}

// rdYlGn is the 11-class ColorBrewer red-yellow-green ramp.
var rdYlGn = mustHexes(
	"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
	"#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837",
)

// NaNColor is the background of cells without a z-score.
const NaNColor = "#ffffff"

func mustHexes(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// RampColor maps t in [0, 1] onto the red-yellow-green ramp.
func RampColor(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return NaNColor
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(rdYlGn)-1)
	i := int(pos)
	if i >= len(rdYlGn)-1 {
		return rdYlGn[len(rdYlGn)-1].Hex()
	}
	return rdYlGn[i].BlendRgb(rdYlGn[i+1], pos-float64(i)).Clamped().Hex()
}

// ColorsFromZ scales z-scores symmetrically by their largest magnitude so
// the ramp midpoint is z=0, then picks a color per value.
func ColorsFromZ(z []float64) []string {
	vmax := 0.0
	for _, v := range z {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vmax = math.Max(vmax, math.Abs(v))
		}
	}
	if vmax == 0 {
		vmax = 1
	}
	out := make([]string, len(z))
	for i, v := range z {
		out[i] = RampColor((v + vmax) / (2 * vmax))
	}
	return out
}

func distinctWeeks(rows []models.ProjectionRow) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rows {
		if !seen[r.Week] {
			seen[r.Week] = true
			out = append(out, r.Week)
		}
	}
	sort.Ints(out)
	return out
}

func distinctPositions(rows []models.ProjectionRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.Position != "" && !seen[r.Position] {
			seen[r.Position] = true
			out = append(out, r.Position)
		}
	}
	sort.Strings(out)
	return out
}
