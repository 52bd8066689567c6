package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"

	"golang.org/x/oauth2"
)

const (
	YahooFantasyBaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"
	yahooAuthURL        = "https://api.login.yahoo.com/oauth2/request_auth"
	yahooTokenURL       = "https://api.login.yahoo.com/oauth2/get_token"
	yahooGameCode       = "nfl"
)

var ErrNoLeagues = errors.New("no fantasy leagues for this account")

// YahooConfig configures the Yahoo fantasy adapter. Client, when set, is used
// as-is (it must already add authorization); otherwise an OAuth2 client is
// built from the token file.
type YahooConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	BaseURL      string
	Client       *http.Client
}

// YahooOAuthConfig returns the out-of-band OAuth2 configuration.
func YahooOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "oob",
		Endpoint: oauth2.Endpoint{
			AuthURL:   yahooAuthURL,
			TokenURL:  yahooTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// LoadYahooToken reads a token saved by SaveYahooToken.
func LoadYahooToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading yahoo token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding yahoo token: %w", err)
	}
	return &tok, nil
}

// SaveYahooToken writes tok as JSON with owner-only permissions.
func SaveYahooToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// ExchangeYahooCode trades a verifier code from the consent page for a token
// and saves it.
func ExchangeYahooCode(ctx context.Context, cfg *oauth2.Config, code, tokenFile string) error {
	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchanging yahoo code: %w", err)
	}
	return SaveYahooToken(tokenFile, tok)
}

// persistingTokenSource saves every refreshed token back to disk.
type persistingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveYahooToken(s.path, tok); err != nil {
			logging.WithPrefix("Yahoo").Warnf("Could not persist refreshed token: %v", err)
		}
	}
	return tok, nil
}

func newYahooHTTPClient(ctx context.Context, cfg YahooConfig) (*http.Client, error) {
	if cfg.Client != nil {
		return cfg.Client, nil
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: YAHOO_DATA_API_CLIENT_ID and YAHOO_DATA_API_CLIENT_SECRET are required", ErrMissingAPIKey)
	}
	tok, err := LoadYahooToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w (run `nflstats yahoo auth` first)", err)
	}
	oc := YahooOAuthConfig(cfg.ClientID, cfg.ClientSecret)
	ts := &persistingTokenSource{base: oc.TokenSource(ctx, tok), path: cfg.TokenFile, last: tok.AccessToken}
	return oauth2.NewClient(ctx, ts), nil
}

type yahooAPI struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

func (a *yahooAPI) fetch(ctx context.Context, path string) (any, error) {
	url := a.baseURL + path + "?format=json"
	a.logger.Debugf("GET %s", url)
	body, err := get(ctx, a.client, url, nil)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}

// YahooGame is one fantasy game (sport) for the logged-in user.
type YahooGame struct {
	api  *yahooAPI
	Code string
}

// GameID returns the game key of the current season, e.g. "449".
func (g *YahooGame) GameID(ctx context.Context) (string, error) {
	doc, err := g.api.fetch(ctx, "/game/"+g.Code)
	if err != nil {
		return "", err
	}
	keys := collect(doc, "game_key")
	if len(keys) == 0 {
		return "", fmt.Errorf("game %s: no game_key in response", g.Code)
	}
	return scalarString(keys[0]), nil
}

// LeagueIDs lists the league keys the user belongs to.
func (g *YahooGame) LeagueIDs(ctx context.Context) ([]string, error) {
	doc, err := g.api.fetch(ctx, "/users;use_login=1/games;game_keys="+g.Code+"/leagues")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range collect(doc, "league_key") {
		ids = append(ids, scalarString(v))
	}
	return ids, nil
}

// League binds a league key.
func (g *YahooGame) League(leagueKey string) *YahooLeague {
	return &YahooLeague{api: g.api, Key: leagueKey}
}

// YahooLeague is one fantasy league.
type YahooLeague struct {
	api *yahooAPI
	Key string
}

func (l *YahooLeague) gameKey() string {
	if i := strings.Index(l.Key, ".l."); i >= 0 {
		return l.Key[:i]
	}
	return yahooGameCode
}

func (l *YahooLeague) playerKeys(ids []int) string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("%s.p.%d", l.gameKey(), id)
	}
	return strings.Join(keys, ",")
}

func (l *YahooLeague) metadataInt(ctx context.Context, field string) (int, error) {
	doc, err := l.api.fetch(ctx, "/league/"+l.Key)
	if err != nil {
		return 0, err
	}
	vals := collect(doc, field)
	if len(vals) == 0 {
		return 0, fmt.Errorf("league %s: no %s in response", l.Key, field)
	}
	n, err := strconv.Atoi(scalarString(vals[0]))
	if err != nil {
		return 0, fmt.Errorf("league %s: bad %s: %w", l.Key, field, err)
	}
	return n, nil
}

// CurrentWeek returns the league's current week.
func (l *YahooLeague) CurrentWeek(ctx context.Context) (int, error) {
	return l.metadataInt(ctx, "current_week")
}

// EndWeek returns the league's last week.
func (l *YahooLeague) EndWeek(ctx context.Context) (int, error) {
	return l.metadataInt(ctx, "end_week")
}

func (l *YahooLeague) entities(ctx context.Context, path, entity string) (models.Records, error) {
	doc, err := l.api.fetch(ctx, path)
	if err != nil {
		return models.Records{}, err
	}
	var rows []map[string]any
	for _, e := range collect(doc, entity) {
		row := make(map[string]any)
		flattenYahoo(e, "", row)
		rows = append(rows, row)
	}
	return models.NewRecords(rows), nil
}

// DraftResults lists every pick of the league draft.
func (l *YahooLeague) DraftResults(ctx context.Context) (models.Records, error) {
	return l.entities(ctx, "/league/"+l.Key+"/draftresults", "draft_result")
}

// PercentOwned returns ownership of the given player ids.
func (l *YahooLeague) PercentOwned(ctx context.Context, playerIDs []int) (models.Records, error) {
	if len(playerIDs) == 0 {
		return models.NewRecords(nil), nil
	}
	return l.entities(ctx, "/league/"+l.Key+"/players;player_keys="+l.playerKeys(playerIDs)+"/percent_owned", "player")
}

// PlayerDetails searches players by name.
func (l *YahooLeague) PlayerDetails(ctx context.Context, name string) (models.Records, error) {
	return l.entities(ctx, "/league/"+l.Key+"/players;search="+urlPathEscape(name), "player")
}

// PlayerDetailsByID looks up one or more players by id.
func (l *YahooLeague) PlayerDetailsByID(ctx context.Context, playerIDs ...int) (models.Records, error) {
	if len(playerIDs) == 0 {
		return models.NewRecords(nil), nil
	}
	return l.entities(ctx, "/league/"+l.Key+"/players;player_keys="+l.playerKeys(playerIDs), "player")
}

// YahooStatsRequest selects the coverage of PlayerStats: "season" (optional
// Season), "week" (Week) or "date" (Date, YYYY-MM-DD).
type YahooStatsRequest struct {
	Type   string
	Season int
	Week   int
	Date   string
}

func (r YahooStatsRequest) path() (string, error) {
	if err := models.RequireOption("type", r.Type, "season", "week", "date"); err != nil {
		return "", err
	}
	switch r.Type {
	case "week":
		if r.Week < 1 {
			return "", fmt.Errorf("%w: week %d", models.ErrInvalidSeasonWeek, r.Week)
		}
		return fmt.Sprintf("/stats;type=week;week=%d", r.Week), nil
	case "date":
		if err := models.RequireDate(r.Date); err != nil {
			return "", err
		}
		return "/stats;type=date;date=" + r.Date, nil
	}
	if r.Season > 0 {
		return fmt.Sprintf("/stats;type=season;season=%d", r.Season), nil
	}
	return "/stats;type=season", nil
}

// PlayerStats returns the stats of the given players. Stat columns are named
// stat_<id>; see StatCategories for the names.
func (l *YahooLeague) PlayerStats(ctx context.Context, playerIDs []int, req YahooStatsRequest) (models.Records, error) {
	suffix, err := req.path()
	if err != nil {
		return models.Records{}, err
	}
	if len(playerIDs) == 0 {
		return models.NewRecords(nil), nil
	}
	return l.entities(ctx, "/league/"+l.Key+"/players;player_keys="+l.playerKeys(playerIDs)+suffix, "player")
}

// Positions lists the league's roster positions.
func (l *YahooLeague) Positions(ctx context.Context) (models.Records, error) {
	return l.entities(ctx, "/league/"+l.Key+"/settings", "roster_position")
}

// StatCategories lists the game's stat ids and names.
func (l *YahooLeague) StatCategories(ctx context.Context) (models.Records, error) {
	return l.entities(ctx, "/game/"+l.gameKey()+"/stat_categories", "stat")
}

// Yahoo bundles the NFL game and the user's first league.
type Yahoo struct {
	Game   *YahooGame
	League *YahooLeague
}

// NewYahoo connects to the fantasy API and selects the first league.
func NewYahoo(ctx context.Context, cfg YahooConfig) (*Yahoo, error) {
	client, err := newYahooHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	base := cfg.BaseURL
	if base == "" {
		base = YahooFantasyBaseURL
	}
	game := &YahooGame{
		api:  &yahooAPI{baseURL: strings.TrimRight(base, "/"), client: client, logger: logging.WithPrefix("Yahoo")},
		Code: yahooGameCode,
	}

	ids, err := game.LeagueIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing leagues: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoLeagues
	}
	game.api.logger.Infof("Using league %s (%d available)", ids[0], len(ids))
	return &Yahoo{Game: game, League: game.League(ids[0])}, nil
}

// collect returns every value stored under key anywhere in the document,
// in document order. Object keys are visited in sorted order so that
// Yahoo's "0", "1", ... collections stay ordered.
func collect(node any, key string) []any {
	var out []any
	var walk func(any)
	walk = func(n any) {
		switch v := n.(type) {
		case map[string]any:
			if val, ok := v[key]; ok {
				out = append(out, val)
				return
			}
			for _, k := range sortedYahooKeys(v) {
				walk(v[k])
			}
		case []any:
			for _, e := range v {
				walk(e)
			}
		}
	}
	walk(node)
	return out
}

func sortedYahooKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// flattenYahoo folds Yahoo's nested arrays of single-key objects into one
// flat row. Nested objects prefix their keys with the parent key; stat
// entries become stat_<id>.
func flattenYahoo(node any, prefix string, out map[string]any) {
	switch v := node.(type) {
	case []any:
		for _, e := range v {
			flattenYahoo(e, prefix, out)
		}
	case map[string]any:
		if stat, ok := v["stat"].(map[string]any); ok {
			if id, ok := stat["stat_id"]; ok {
				out["stat_"+scalarString(id)] = stat["value"]
				return
			}
		}
		for k, val := range v {
			switch val.(type) {
			case map[string]any, []any:
				flattenYahoo(val, prefix+k+"_", out)
			default:
				out[prefix+k] = val
			}
		}
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func urlPathEscape(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "%20")
}
