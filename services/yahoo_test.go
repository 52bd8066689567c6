package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"nfl-projections-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	yahooLeaguesJSON = `{"fantasy_content":{"users":{"0":{"user":[{"guid":"X"},{"games":{"0":{"game":[{"game_key":"449","code":"nfl"},{"leagues":{"0":{"league":[{"league_key":"449.l.1234","name":"Office"}]},"1":{"league":[{"league_key":"449.l.99","name":"Family"}]},"count":2}}]},"count":1}}]},"count":1}}}`
	yahooLeagueJSON  = `{"fantasy_content":{"league":[{"league_key":"449.l.1234","current_week":"6","end_week":17}]}}`
	yahooPlayersJSON = `{"fantasy_content":{"league":[{"league_key":"449.l.1234"},{"players":{"0":{"player":[[{"player_key":"449.p.30123"},{"player_id":"30123"},{"name":{"full":"Patrick Mahomes","first":"Patrick"}},[],{"display_position":"QB"}],{"player_stats":{"coverage_type":"week","week":"3","stats":[{"stat":{"stat_id":"4","value":"331"}},{"stat":{"stat_id":"5","value":"2"}}]}}]},"count":1}}]}}`
)

func newYahooTestServer(t *testing.T, seen *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		*seen = append(*seen, r.URL.Path)
		switch {
		case r.URL.Path == "/users;use_login=1/games;game_keys=nfl/leagues":
			_, _ = w.Write([]byte(yahooLeaguesJSON))
		case r.URL.Path == "/league/449.l.1234":
			_, _ = w.Write([]byte(yahooLeagueJSON))
		default:
			_, _ = w.Write([]byte(yahooPlayersJSON))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooSelectsFirstLeague(t *testing.T) {
	var seen []string
	srv := newYahooTestServer(t, &seen)

	y, err := NewYahoo(context.Background(), YahooConfig{BaseURL: srv.URL, Client: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, "449.l.1234", y.League.Key)

	ids, err := y.Game.LeagueIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"449.l.1234", "449.l.99"}, ids)

	week, err := y.League.CurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, week)

	end, err := y.League.EndWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, end)
}

func TestYahooPlayerStatsFlattens(t *testing.T) {
	var seen []string
	srv := newYahooTestServer(t, &seen)
	y, err := NewYahoo(context.Background(), YahooConfig{BaseURL: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	stats, err := y.League.PlayerStats(context.Background(), []int{30123}, YahooStatsRequest{Type: "week", Week: 3})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Len())
	row := stats.Rows[0]
	assert.Equal(t, "Patrick Mahomes", row["name_full"])
	assert.Equal(t, "QB", row["display_position"])
	assert.Equal(t, "331", row["stat_4"])
	assert.Equal(t, "2", row["stat_5"])
	assert.Equal(t, "week", row["player_stats_coverage_type"])
	assert.Contains(t, seen, "/league/449.l.1234/players;player_keys=449.p.30123/stats;type=week;week=3")
}

func TestYahooStatsRequestValidation(t *testing.T) {
	l := &YahooLeague{Key: "449.l.1"}
	ctx := context.Background()

	_, err := l.PlayerStats(ctx, []int{1}, YahooStatsRequest{Type: "month"})
	assert.ErrorIs(t, err, models.ErrInvalidOption)

	_, err = l.PlayerStats(ctx, []int{1}, YahooStatsRequest{Type: "date", Date: "yesterday"})
	assert.ErrorIs(t, err, models.ErrInvalidDate)

	_, err = l.PlayerStats(ctx, []int{1}, YahooStatsRequest{Type: "week"})
	assert.ErrorIs(t, err, models.ErrInvalidSeasonWeek)

	recs, err := l.PlayerStats(ctx, nil, YahooStatsRequest{Type: "season"})
	require.NoError(t, err)
	assert.True(t, recs.Empty())
}

func TestYahooNoLeagues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fantasy_content":{"users":{"count":0}}}`))
	}))
	defer srv.Close()

	_, err := NewYahoo(context.Background(), YahooConfig{BaseURL: srv.URL, Client: srv.Client()})
	assert.ErrorIs(t, err, ErrNoLeagues)
}

func TestYahooTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yahoo", "oauth2.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "bearer", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, SaveYahooToken(path, tok))

	got, err := LoadYahooToken(path)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
	assert.Equal(t, "r", got.RefreshToken)
	assert.True(t, tok.Expiry.Equal(got.Expiry))

	_, err = NewYahoo(context.Background(), YahooConfig{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
