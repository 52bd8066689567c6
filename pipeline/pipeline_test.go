package pipeline

import (
	"bytes"
	"math"
	"testing"

	"nfl-projections-go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nan       = math.NaN()
	approxNaN = cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)}
)

func playerRow(id string, season, week int, opp string, vals map[string]float64) Row {
	return Row{PlayerID: id, Season: season, Week: week, OpponentTeam: opp, Position: "RB", Values: vals}
}

func TestEncodeInjuriesSortsCategoriesWithMissingLast(t *testing.T) {
	inj := EncodeInjuries([]models.InjuryReport{
		{PlayerID: "a", Season: 2023, Week: 1, ReportStatus: "Questionable", PracticeStatus: "Limited"},
		{PlayerID: "b", Season: 2023, Week: 1, ReportStatus: "", PracticeStatus: "Full"},
		{PlayerID: "a", Season: 2023, Week: 1, ReportStatus: "Out", PracticeStatus: "Did Not Participate"},
	})

	assert.Equal(t, []string{
		"report_status_Out", "report_status_Questionable", "report_status_nan",
		"practice_status_Did Not Participate", "practice_status_Full", "practice_status_Limited",
	}, inj.Names)

	a := inj.ByKey[Key{PlayerID: "a", Season: 2023, Week: 1}]
	assert.Equal(t, 1.0, a["report_status_Out"])
	assert.Equal(t, 0.0, a["report_status_Questionable"])
	assert.Equal(t, 1.0, a["practice_status_Did Not Participate"])

	b := inj.ByKey[Key{PlayerID: "b", Season: 2023, Week: 1}]
	assert.Equal(t, 1.0, b["report_status_nan"])
}

func TestFilterDepth(t *testing.T) {
	depth := FilterDepth([]models.DepthChartEntry{
		{PlayerID: "a", Season: 2023, Week: 1, DepthTeam: 1, HasSeasonWeek: true},
		{PlayerID: "b", Season: 2023, Week: 1, DepthTeam: 3, HasSeasonWeek: true},
		{PlayerID: "c", Season: 2023, Week: 1, DepthTeam: nan, HasSeasonWeek: true},
		{PlayerID: "b", Season: 2023, Week: 1, DepthTeam: 2, HasSeasonWeek: true},
		{PlayerID: "d", DepthTeam: 1},
	})

	assert.Len(t, depth, 3)
	assert.Equal(t, 1.0, depth[Key{"a", 2023, 1}])
	assert.Equal(t, 2.0, depth[Key{"b", 2023, 1}])
	assert.Equal(t, 2.0, depth[Key{"c", 2023, 1}])
}

func TestMergePlayersLeftJoin(t *testing.T) {
	inj := EncodeInjuries([]models.InjuryReport{{PlayerID: "a", Season: 2023, Week: 2, ReportStatus: "Out", PracticeStatus: "Full"}})
	depth := map[Key]float64{{"a", 2023, 1}: 1}

	rows := MergePlayers([]models.PlayerWeek{
		{PlayerID: "a", Season: 2023, Week: 1, Stats: map[string]float64{"carries": 10}},
		{PlayerID: "a", Season: 2023, Week: 2, Stats: map[string]float64{"carries": 12}},
	}, inj, depth)

	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, rows[0].Get(DepthColumn))
	assert.True(t, math.IsNaN(rows[0].Get("report_status_Out")))
	assert.True(t, math.IsNaN(rows[1].Get(DepthColumn)))
	assert.Equal(t, 1.0, rows[1].Get("report_status_Out"))
}

func TestRollingShiftsAndSkipsMissing(t *testing.T) {
	tbl := &Table{Rows: []Row{
		playerRow("a", 2023, 3, "KC", map[string]float64{"x": 4}),
		playerRow("a", 2023, 1, "KC", map[string]float64{"x": 2}),
		playerRow("b", 2023, 1, "KC", map[string]float64{"x": 100}),
		playerRow("a", 2023, 4, "KC", map[string]float64{"x": 6}),
		playerRow("a", 2023, 2, "KC", map[string]float64{"x": nan}),
	}}

	names := Rolling(tbl, []string{"x"}, BySeasonPlayer, SortKeyPlayer, 2)
	assert.Equal(t, []string{"x_roll2_shift"}, names)

	a := tbl.Filter(func(r Row) bool { return r.PlayerID == "a" })
	if diff := cmp.Diff([]float64{nan, 2, 2, 4}, a.Column("x_roll2_shift"), approxNaN); diff != "" {
		t.Errorf("rolling mismatch (-want +got):\n%s", diff)
	}
	b := tbl.Filter(func(r Row) bool { return r.PlayerID == "b" })
	assert.True(t, math.IsNaN(b.Rows[0].Get("x_roll2_shift")))
}

func TestRollingResetsEachSeason(t *testing.T) {
	tbl := &Table{Rows: []Row{
		playerRow("a", 2022, 17, "KC", map[string]float64{"x": 9}),
		playerRow("a", 2023, 1, "KC", map[string]float64{"x": 1}),
	}}
	Rolling(tbl, []string{"x"}, BySeasonPlayer, SortKeyPlayer, 4)
	assert.True(t, math.IsNaN(tbl.Rows[1].Get("x_roll4_shift")))
}

func TestCumulativeMeanAndSampleStd(t *testing.T) {
	tbl := &Table{Rows: []Row{
		playerRow("a", 2023, 1, "KC", map[string]float64{"x": 2}),
		playerRow("a", 2023, 2, "KC", map[string]float64{"x": nan}),
		playerRow("a", 2023, 3, "KC", map[string]float64{"x": 4}),
		playerRow("a", 2023, 4, "KC", map[string]float64{"x": 6}),
	}}

	avg, std := Cumulative(tbl, []string{"x"}, BySeasonPlayer, SortKeyPlayer, "")
	assert.Equal(t, []string{"x_cum_avg"}, avg)
	assert.Equal(t, []string{"x_cum_std"}, std)

	if diff := cmp.Diff([]float64{nan, 2, 2, 3}, tbl.Column("x_cum_avg"), approxNaN); diff != "" {
		t.Errorf("cum avg mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{nan, nan, nan, math.Sqrt2}, tbl.Column("x_cum_std"), approxNaN); diff != "" {
		t.Errorf("cum std mismatch (-want +got):\n%s", diff)
	}
}

func TestCumulativeVsOpponentSpansSeasons(t *testing.T) {
	tbl := &Table{Rows: []Row{
		playerRow("a", 2022, 5, "KC", map[string]float64{"x": 10}),
		playerRow("a", 2022, 6, "DEN", map[string]float64{"x": 50}),
		playerRow("a", 2023, 5, "KC", map[string]float64{"x": 20}),
	}}

	Cumulative(tbl, []string{"x"}, ByOpponentPlayer, SortKeyPlayer, models.OpponentPrefix)

	if diff := cmp.Diff([]float64{nan, nan, 10}, tbl.Column("vs_opponent_x_cum_avg"), approxNaN); diff != "" {
		t.Errorf("vs opponent mismatch (-want +got):\n%s", diff)
	}
}

func TestScaleIgnoresMissingAndConstantColumns(t *testing.T) {
	tbl := &Table{Rows: []Row{
		{Values: map[string]float64{"x": 1, "c": 5}},
		{Values: map[string]float64{"x": 3, "c": 5}},
		{Values: map[string]float64{"x": nan, "c": 5}},
	}}

	s := Scale(tbl, []string{"x", "c"})

	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale)
	if diff := cmp.Diff([]float64{-1, 1, nan}, tbl.Column("x"), approxNaN); diff != "" {
		t.Errorf("scaled mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{0, 0, 0}, tbl.Column("c"))
}

func TestMergeDefenseMatchesOpponent(t *testing.T) {
	def := &Table{Rows: []Row{
		{Team: "KC", Season: 2023, Week: 1, Values: map[string]float64{"d": 7}},
		{Team: "KC", Season: 2023, Week: 1, Values: map[string]float64{"d": 99}},
	}}
	tbl := &Table{Rows: []Row{
		playerRow("a", 2023, 1, "KC", map[string]float64{}),
		playerRow("a", 2023, 2, "KC", map[string]float64{}),
	}}

	MergeDefense(tbl, def, []string{"d"})

	assert.Equal(t, 7.0, tbl.Rows[0].Get("d"))
	assert.True(t, math.IsNaN(tbl.Rows[1].Get("d")))
}

func TestBuildTargetTablesUnionsBothGroups(t *testing.T) {
	qb := Row{PlayerID: "qb", Position: "QB", Season: 2023, Week: 1, Values: map[string]float64{"rushing_fumbles_lost": 1}}
	passing := FilterByPositionalGroup([]Row{qb}, models.CategoryPassing, nil)
	rushRec := FilterByPositionalGroup([]Row{qb, {PlayerID: "rb", Position: "RB", Season: 2023, Week: 1}}, models.CategoryRushingReceiving, nil)

	tables := BuildTargetTables(passing, rushRec, []models.TeamWeek{{Team: "KC", Season: 2023, Week: 1, Stats: map[string]float64{"def_sacks": 3}}}, nil)

	assert.Equal(t, 2, tables["rsh_fmbls"].Len())
	assert.Equal(t, 1, tables["p_yd"].Len())
	assert.Equal(t, 2, tables["rsh_yd"].Len())
	require.Equal(t, 1, tables["def"].Len())
	assert.Equal(t, 3.0, tables["def"].Rows[0].Get("def_sacks"))
	assert.True(t, math.IsNaN(tables["def"].Rows[0].Get("def_interceptions")))
}

func TestInputColumnsLayout(t *testing.T) {
	tg, _ := models.TargetByCode("rc")
	cols := InputColumns(tg, []string{"report_status_Out"}, 4)
	assert.Equal(t, []string{
		"targets_roll4_shift", "receptions_roll4_shift",
		"targets_cum_avg", "receptions_cum_avg",
		"targets_cum_std", "receptions_cum_std",
		"vs_opponent_targets_cum_avg", "vs_opponent_receptions_cum_avg",
		"vs_opponent_targets_cum_std", "vs_opponent_receptions_cum_std",
		"depth_team", "report_status_Out",
	}, cols)
}

func sampleInputs() Inputs {
	var players []models.PlayerWeek
	var teams []models.TeamWeek
	for week := 1; week <= 4; week++ {
		w := float64(week)
		players = append(players,
			models.PlayerWeek{PlayerID: "rb1", PlayerDisplayName: "Running Back", Position: "RB", Team: "SF", OpponentTeam: "KC", Season: 2023, Week: week,
				Stats: map[string]float64{"carries": 10 + w, "rushing_yards": 50 + 10*w, "rushing_tds": 0, "rushing_fumbles": 0, "rushing_fumbles_lost": 0}},
			models.PlayerWeek{PlayerID: "qb1", PlayerDisplayName: "Quarter Back", Position: "QB", Team: "SF", OpponentTeam: "KC", Season: 2023, Week: week,
				Stats: map[string]float64{"attempts": 30, "completions": 20 + w, "passing_yards": 200 + w, "passing_tds": 1, "carries": 2, "rushing_yards": 5}},
		)
		teams = append(teams, models.TeamWeek{Team: "KC", OpponentTeam: "SF", Season: 2023, Week: week,
			Stats: map[string]float64{"def_sacks": w, "def_interceptions": 1}})
	}
	return Inputs{
		Players:  players,
		Teams:    teams,
		Injuries: []models.InjuryReport{{PlayerID: "rb1", Season: 2023, Week: 2, ReportStatus: "Questionable", PracticeStatus: "Limited"}},
		Depth:    []models.DepthChartEntry{{PlayerID: "rb1", Season: 2023, Week: 1, DepthTeam: 1, HasSeasonWeek: true}},
	}
}

func TestRunBuildsEveryTarget(t *testing.T) {
	res, err := Run(sampleInputs(), Options{RollingPeriod: 4})
	require.NoError(t, err)

	for _, code := range append(models.TargetCodes(), models.DefenseTargetCode) {
		require.Contains(t, res.Tables, code)
		require.Contains(t, res.InputColumns, code)
	}
	assert.Equal(t, []string{"report_status_Questionable", "practice_status_Limited"}, res.InjuryNames)

	rsh := res.Tables["rsh_yd"]
	assert.Equal(t, 8, rsh.Len())
	for _, c := range res.DefenseInputs() {
		assert.True(t, rsh.HasColumn(c), c)
	}

	// Display copies stay unscaled.
	var rb []Row
	for _, r := range rsh.Rows {
		if r.PlayerID == "rb1" {
			rb = append(rb, r)
		}
	}
	require.Len(t, rb, 4)
	assert.True(t, math.IsNaN(rb[0].Get(DisplayAvgColumn("rushing_yards"))))
	assert.InDelta(t, 60.0, rb[1].Get(DisplayAvgColumn("rushing_yards")), 1e-9)
	assert.InDelta(t, 65.0, rb[2].Get(DisplayAvgColumn("rushing_yards")), 1e-9)

	// The first game of a season never sees its own stats.
	assert.True(t, math.IsNaN(rb[0].Get(RollingColumn("rushing_yards", 4))))
	assert.Equal(t, 4, res.Tables["p_yd"].Len())
}

func TestRunRejectsNegativePeriod(t *testing.T) {
	_, err := Run(Inputs{}, Options{RollingPeriod: -1})
	assert.Error(t, err)
}

func TestMatrixParquetRoundTrip(t *testing.T) {
	tbl := &Table{Target: models.Targets[0], Rows: []Row{
		{PlayerID: "a", Season: 2023, Week: 1, Values: map[string]float64{"f1": 1, "f2": nan, "rushing_yards": 80}},
		{PlayerID: "b", Season: 2023, Week: 2, Values: map[string]float64{"f1": 3, "f2": 4}},
	}}
	m := BuildMatrix(tbl, []string{"f1", "f2"}, "rushing_yards")
	assert.Equal(t, []float64{1, 0}, m.Rows[0].Features)
	assert.Equal(t, 0.0, m.Rows[1].Label)

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, m))

	got, err := ReadMatrix(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "rsh_yd", got.Target)
	assert.Equal(t, []string{"f1", "f2"}, got.FeatureNames)
	if diff := cmp.Diff(m.Rows, got.Rows); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
