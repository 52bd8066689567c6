package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nfl-projections-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	playerStatsCSV = `player_id,player_name,player_display_name,position,position_group,recent_team,opponent_team,season,week,season_type,passing_yards,interceptions,sacks,rushing_yards,headshot_url
00-0033873,P.Mahomes,Patrick Mahomes,QB,QB,KC,BAL,2024,1,REG,291,1,2,2,http://x
00-0036389,J.Hurts,Jalen Hurts,QB,QB,PHI,GB,2024,1,REG,278,2,2,NA,http://y
`
	teamStatsCSV = `team,opponent_team,season,week,season_type,def_sacks,def_interceptions
KC,BAL,2024,1,REG,1,0
BAL,KC,2024,1,REG,2,1
`
	injuriesCSV = `season,game_type,team,week,gsis_id,position,full_name,report_status,practice_status
2024,REG,KC,1,00-0033873,QB,Patrick Mahomes,Questionable,Limited Participation in Practice
2024,REG,PHI,1,00-0036389,QB,Jalen Hurts,NA,Full Participation in Practice
`
	depthCSV = `season,club_code,week,game_type,depth_team,gsis_id,position
2024,KC,1,REG,1,00-0033873,QB
2024,KC,1,REG,,00-0099999,QB
NA,KC,NA,REG,2,00-0088888,RB
`
)

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newNflverseTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/stats_player/stats_player_week_2024.csv":
			_, _ = w.Write([]byte(playerStatsCSV))
		case "/stats_team/stats_team_week_2024.csv":
			_, _ = w.Write([]byte(teamStatsCSV))
		case "/injuries/injuries_2024.csv":
			_, _ = w.Write([]byte(injuriesCSV))
		case "/depth_charts/depth_charts_2024.csv":
			_, _ = w.Write([]byte(depthCSV))
		case "/schedules/games.csv":
			_, _ = w.Write([]byte("game_id,season\na,2023\nb,2024\nc,2024\n"))
		case "/pbp/play_by_play_2024.csv.gz":
			_, _ = w.Write(gz(t, "play_id,posteam\n1,KC\n2,BAL\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYearNormalization(t *testing.T) {
	assert.Equal(t, Years{1999, 2025, 2010}, NormalizeYears(1990, 2040, 2010))
	assert.Equal(t, Years{2022, 2023, 2024}, YearRange(2022, 2024))
	assert.Equal(t, Years{2024, 2025}, YearRange(2030, 2024))

	y, err := ParseYears("2019-2021")
	require.NoError(t, err)
	assert.Equal(t, Years{2019, 2020, 2021}, y)

	y, err = ParseYears("2021, 1980")
	require.NoError(t, err)
	assert.Equal(t, Years{2021, 1999}, y)

	_, err = ParseYears("twenty")
	assert.ErrorIs(t, err, models.ErrInvalidSeason)
}

func TestCurrentSeasonAndWeek(t *testing.T) {
	at := func(s string) *Nflverse {
		ts, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return NewNflverse(NflverseConfig{Now: func() time.Time { return ts }})
	}

	// Labor Day 2024 was September 2nd, kickoff Thursday the 5th.
	assert.Equal(t, 2023, at("2024-09-04").CurrentSeason())
	assert.Equal(t, 2024, at("2024-09-05").CurrentSeason())
	assert.Equal(t, 1, at("2024-09-10").CurrentWeek())
	assert.Equal(t, 2, at("2024-09-12").CurrentWeek())
	assert.Equal(t, 2024, at("2025-01-20").CurrentSeason())
	assert.Equal(t, 20, at("2025-01-20").CurrentWeek())
	assert.Equal(t, 22, at("2025-06-01").CurrentWeek())
}

func TestNflverseTypedLoaders(t *testing.T) {
	var hits int
	srv := newNflverseTestServer(t, &hits)
	n := NewNflverse(NflverseConfig{ReleaseURL: srv.URL})

	in, err := n.PipelineInputs(context.Background(), Years{2024})
	require.NoError(t, err)

	require.Len(t, in.Players, 2)
	p := in.Players[0]
	assert.Equal(t, "00-0033873", p.PlayerID)
	assert.Equal(t, "KC", p.Team)
	assert.Equal(t, 2024, p.Season)
	assert.Equal(t, 291.0, p.Stat("passing_yards"))
	assert.Equal(t, 1.0, p.Stat("passing_interceptions"))
	assert.Equal(t, 2.0, p.Stat("sacks_suffered"))
	assert.NotContains(t, p.Stats, "headshot_url")
	assert.True(t, math.IsNaN(in.Players[1].Stat("rushing_yards")))

	require.Len(t, in.Teams, 2)
	assert.Equal(t, 2.0, in.Teams[1].Stat("def_sacks"))

	require.Len(t, in.Injuries, 2)
	assert.Equal(t, "Questionable", in.Injuries[0].ReportStatus)
	assert.Equal(t, "", in.Injuries[1].ReportStatus)

	require.Len(t, in.Depth, 3)
	assert.Equal(t, 1.0, in.Depth[0].DepthTeam)
	assert.Equal(t, "KC", in.Depth[0].Team)
	assert.True(t, math.IsNaN(in.Depth[1].DepthTeam))
	assert.False(t, in.Depth[2].HasSeasonWeek)
}

func TestNflverseRecordsAndCache(t *testing.T) {
	var hits int
	srv := newNflverseTestServer(t, &hits)
	cache := t.TempDir()
	n := NewNflverse(NflverseConfig{ReleaseURL: srv.URL, CacheDir: cache})
	ctx := context.Background()

	games, err := n.Schedules(ctx, Years{2024})
	require.NoError(t, err)
	assert.Equal(t, 2, games.Len())

	pbp, err := n.PlayByPlay(ctx, Years{2024})
	require.NoError(t, err)
	assert.Equal(t, []string{"play_id", "posteam"}, pbp.Columns)
	assert.Equal(t, "BAL", pbp.Rows[1]["posteam"])

	before := hits
	_, err = n.PlayByPlay(ctx, Years{2024})
	require.NoError(t, err)
	assert.Equal(t, before, hits)

	removed, err := n.ClearCache("*play_by_play*")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	entries, err := os.ReadDir(cache)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	removed, err = n.ClearCache("")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = n.Injuries(ctx, Years{2019})
	var statusErr *HTTPStatusError
	assert.ErrorAs(t, err, &statusErr)

	_, err = n.PlayerStats(ctx, Years{2024}, "monthly")
	assert.ErrorIs(t, err, models.ErrInvalidOption)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	players := ToPlayerWeeks(models.NewStringRecords([]map[string]string{{
		"player_id": "a", "player_display_name": "A Player", "season": "2024", "week": "3",
		"rushing_yards": "55", "receptions": "NA",
	}}))
	require.NoError(t, WritePlayerWeeksSnapshot(filepath.Join(dir, "players.parquet"), players))

	got, err := ReadPlayerWeeksSnapshot(filepath.Join(dir, "players.parquet"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A Player", got[0].PlayerDisplayName)
	assert.Equal(t, 3, got[0].Week)
	assert.Equal(t, 55.0, got[0].Stat("rushing_yards"))
	assert.True(t, math.IsNaN(got[0].Stat("receptions")))

	teams := []models.TeamWeek{{Team: "KC", Season: 2024, Week: 1, Stats: map[string]float64{"def_sacks": 3}}}
	require.NoError(t, WriteTeamWeeksSnapshot(filepath.Join(dir, "teams.parquet"), teams))
	gotTeams, err := ReadTeamWeeksSnapshot(filepath.Join(dir, "teams.parquet"))
	require.NoError(t, err)
	assert.Equal(t, teams[0].Stats, gotTeams[0].Stats)
}
