package handlers

import (
	"math"
	"net/url"
	"testing"

	"nfl-projections-go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []models.ProjectionRow {
	return []models.ProjectionRow{
		{PlayerID: "qb1", Season: 2024, Week: 1, PlayerDisplayName: "Patrick Mahomes", Position: "QB",
			TruePassingYards: 250.456, TrueRushingYards: 10, ProjectedRushingYards: 12.345},
		{PlayerID: "rb1", Season: 2024, Week: 1, PlayerDisplayName: "Derrick Henry", Position: "RB",
			TrueRushingYards: 80.123, ProjectedRushingYards: 70},
		{PlayerID: "rb2", Season: 2024, Week: 2, PlayerDisplayName: "Saquon Barkley", Position: "RB",
			TrueRushingYards: 40, ProjectedRushingYards: 60},
		{PlayerID: "wr1", Season: 2024, Week: 1, PlayerDisplayName: "Justin Jefferson", Position: "WR",
			TrueRushingYards: -2, TrueReceivingYards: 120},
	}
}

func ids(rows []models.ProjectionRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PlayerID
	}
	return out
}

func TestParseDashboardQuery(t *testing.T) {
	v := url.Values{
		"week":          {"1", "2,3"},
		"position":      {"RB, WR"},
		"min_rsh_yards": {"10.5"},
		"sort_order":    {"Ascending"},
		"column":        {"player_display_name", "True rushing_yards"},
		"q":             {"  henry "},
	}
	q, err := ParseDashboardQuery(v)
	require.NoError(t, err)

	want := DashboardQuery{
		Weeks:           []int{1, 2, 3},
		Positions:       []string{"RB", "WR"},
		MinRushingYards: 10.5,
		SortBy:          SortChoices[0],
		Ascending:       true,
		Columns:         []string{"player_display_name", "True rushing_yards"},
		Search:          "henry",
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseDashboardQuery(url.Values{"week": {"one"}})
	assert.ErrorIs(t, err, models.ErrInvalidOption)
	_, err = ParseDashboardQuery(url.Values{"sort_order": {"sideways"}})
	assert.ErrorIs(t, err, models.ErrInvalidOption)
	_, err = ParseDashboardQuery(url.Values{"min_p_yards": {"lots"}})
	assert.ErrorIs(t, err, models.ErrInvalidOption)
}

func TestFilterProjections(t *testing.T) {
	rows := sampleRows()

	got := FilterProjections(rows, DashboardQuery{Weeks: []int{1}, SortBy: "True rushing_yards"})
	assert.Equal(t, []string{"rb1", "qb1"}, ids(got))
	assert.Equal(t, 80.12, got[0].TrueRushingYards)
	assert.Equal(t, 250.46, got[1].TruePassingYards)
	assert.Equal(t, 80.123, rows[1].TrueRushingYards, "input rows are not modified")

	got = FilterProjections(rows, DashboardQuery{SortBy: "no such column", Ascending: true})
	assert.Equal(t, []string{"qb1", "rb2", "rb1"}, ids(got))

	got = FilterProjections(rows, DashboardQuery{Positions: []string{"RB"}, SortBy: "Projected rushing_yards"})
	assert.Equal(t, []string{"rb1", "rb2"}, ids(got))

	got = FilterProjections(rows, DashboardQuery{MinRushingYards: 50, SortBy: "True rushing_yards"})
	assert.Equal(t, []string{"rb1"}, ids(got))

	got = FilterProjections(rows, DashboardQuery{MinRushingYards: -10, SortBy: "player_display_name", Ascending: true})
	assert.Equal(t, []string{"rb1", "wr1", "qb1", "rb2"}, ids(got))

	got = FilterProjections(rows, DashboardQuery{Search: "Mahomes", SortBy: SortChoices[0]})
	assert.Equal(t, []string{"qb1"}, ids(got))
}

func TestSelectedColumns(t *testing.T) {
	assert.Equal(t, models.ProjectionColumns(), SelectedColumns(nil))
	assert.Equal(t, models.ProjectionColumns(), SelectedColumns([]string{"bogus"}))
	assert.Equal(t,
		[]string{"player_display_name", "True rushing_yards"},
		SelectedColumns([]string{"True rushing_yards", "bogus", "player_display_name"}))
}

func TestZScores(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-12)
	nan := cmpopts.EquateNaNs()

	if diff := cmp.Diff([]float64{-1, 0, 1}, ZScores([]float64{1, 2, 3}), approx); diff != "" {
		t.Errorf("z-scores (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{math.NaN()}, ZScores([]float64{5}), nan); diff != "" {
		t.Errorf("single value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{math.NaN(), math.NaN()}, ZScores([]float64{2, 2}), nan); diff != "" {
		t.Errorf("no spread (-want +got):\n%s", diff)
	}
}

func TestColorsFromZ(t *testing.T) {
	assert.Equal(t, []string{"#a50026", "#ffffbf", "#006837", NaNColor},
		ColorsFromZ([]float64{-2, 0, 2, math.NaN()}))
	assert.Equal(t, []string{NaNColor, NaNColor}, ColorsFromZ([]float64{math.NaN(), math.NaN()}))

	assert.Equal(t, "#a50026", RampColor(-0.5))
	assert.Equal(t, "#006837", RampColor(1.5))
	assert.Equal(t, "#f46d43", RampColor(0.2))
}

func TestBuildDashboardView(t *testing.T) {
	rows := sampleRows()

	empty := BuildDashboardView(rows, DashboardQuery{Weeks: []int{1}})
	assert.Equal(t, NoSelectionHint, empty.Hint)
	assert.Empty(t, empty.Rows)
	assert.Equal(t, []int{1, 2}, empty.Weeks)
	assert.Equal(t, []string{"QB", "RB", "WR"}, empty.Positions)

	view := BuildDashboardView(rows, DashboardQuery{
		Weeks:     []int{1},
		Positions: []string{"QB", "RB"},
		SortBy:    "True rushing_yards",
		Columns:   []string{"True rushing_yards", "player_display_name"},
	})
	require.Empty(t, view.Hint)
	assert.Equal(t, []string{"player_display_name", "True rushing_yards"}, view.Columns)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, [][]DashboardCell{
		{{Text: "Derrick Henry"}, {Text: "80.12", Background: "#006837"}},
		{{Text: "Patrick Mahomes"}, {Text: "10.00", Background: "#a50026"}},
	}, view.Rows)
}
