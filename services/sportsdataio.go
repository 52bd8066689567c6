package services

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"
)

const (
	SportsDataFantasyBaseURL = "https://api.sportsdata.io/api/nfl/fantasy/json"
	SportsDataOddsBaseURL    = "https://api.sportsdata.io/api/nfl/odds/json"
	sportsDataKeyHeader      = "Ocp-Apim-Subscription-Key"
	sportsDataKeyEnv         = "SPORTS_DATA_IO_API_KEY"
)

// SportsDataIOConfig configures the SportsDataIO adapter. Empty fields take
// the production defaults; an empty APIKey falls back to
// SPORTS_DATA_IO_API_KEY.
type SportsDataIOConfig struct {
	APIKey         string
	FantasyBaseURL string
	OddsBaseURL    string
	Client         *http.Client
}

// SportsDataIO groups the three endpoint families of the SportsDataIO API.
type SportsDataIO struct {
	Core    *SportsDataCore
	Fantasy *SportsDataFantasy
	Odds    *SportsDataOdds
}

// sportsDataClient is one endpoint family bound to its base URL.
type sportsDataClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

func (c *sportsDataClient) fetch(ctx context.Context, path string) (models.Records, error) {
	url := c.baseURL + path
	c.logger.Debugf("GET %s", url)
	body, err := get(ctx, c.client, url, map[string]string{sportsDataKeyHeader: c.apiKey})
	if err != nil {
		return models.Records{}, err
	}
	recs, err := decodeRecords(body)
	if err != nil {
		return models.Records{}, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// SportsDataCore serves team, player and calendar reference data.
type SportsDataCore struct{ sportsDataClient }

// SportsDataFantasy serves DFS slates and fantasy stats.
type SportsDataFantasy struct{ sportsDataClient }

// SportsDataOdds serves odds, scores and team stats.
type SportsDataOdds struct{ sportsDataClient }

// NewSportsDataIO builds the adapter. It fails with ErrMissingAPIKey when no
// key is configured.
func NewSportsDataIO(cfg SportsDataIOConfig) (*SportsDataIO, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(sportsDataKeyEnv)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pass one or set %s", ErrMissingAPIKey, sportsDataKeyEnv)
	}
	if cfg.FantasyBaseURL == "" {
		cfg.FantasyBaseURL = SportsDataFantasyBaseURL
	}
	if cfg.OddsBaseURL == "" {
		cfg.OddsBaseURL = SportsDataOddsBaseURL
	}
	client := newHTTPClient(cfg.Client)
	logger := logging.WithPrefix("SportsDataIO")

	bind := func(base string) sportsDataClient {
		return sportsDataClient{apiKey: cfg.APIKey, baseURL: base, client: client, logger: logger}
	}
	return &SportsDataIO{
		Core:    &SportsDataCore{bind(cfg.FantasyBaseURL)},
		Fantasy: &SportsDataFantasy{bind(cfg.FantasyBaseURL)},
		Odds:    &SportsDataOdds{bind(cfg.OddsBaseURL)},
	}, nil
}

// ByeWeeks returns every team's bye week. season is YYYY or YYYY{REG,PRE,POST}.
func (c *SportsDataCore) ByeWeeks(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, true); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/Byes/"+season)
}

// PlayerDetails lists "available" players or "free-agent"s.
func (c *SportsDataCore) PlayerDetails(ctx context.Context, typeOf string) (models.Records, error) {
	if err := models.RequireOption("type", typeOf, "available", "free-agent"); err != nil {
		return models.Records{}, err
	}
	if typeOf == "free-agent" {
		return c.fetch(ctx, "/FreeAgents")
	}
	return c.fetch(ctx, "/Players")
}

// Rookies lists the rookies of a YYYY season.
func (c *SportsDataCore) Rookies(ctx context.Context, season string) (models.Records, error) {
	if !models.ValidateSeason(season, true) {
		return models.Records{}, fmt.Errorf("%w: %q must be YYYY", models.ErrInvalidSeason, season)
	}
	return c.fetch(ctx, "/Rookies/"+season)
}

// Standings returns team standings.
func (c *SportsDataCore) Standings(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, false); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/Standings/"+season)
}

// Teams lists all active teams.
func (c *SportsDataCore) Teams(ctx context.Context) (models.Records, error) {
	return c.fetch(ctx, "/Teams")
}

// Timeframes returns current, upcoming, completed, recent or all timeframes.
func (c *SportsDataCore) Timeframes(ctx context.Context, typeOf string) (models.Records, error) {
	if err := models.RequireOption("type", typeOf, "current", "upcoming", "completed", "recent", "all"); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/Timeframes/"+typeOf)
}

// DFSSlatesByDate returns the DFS slates of a date.
func (c *SportsDataFantasy) DFSSlatesByDate(ctx context.Context, date string) (models.Records, error) {
	if err := models.RequireDate(date); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/DfsSlatesByDate/"+date)
}

// DFSSlatesByWeek returns the DFS slates of a week.
func (c *SportsDataFantasy) DFSSlatesByWeek(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/DfsSlatesByWeek", season, week)
}

// DefenseGameStats returns fantasy defense stats per game of a week.
func (c *SportsDataFantasy) DefenseGameStats(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/FantasyDefenseByGame", season, week)
}

// DefenseSeasonStats returns fantasy defense season totals.
func (c *SportsDataFantasy) DefenseSeasonStats(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, false); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/FantasyDefenseBySeason/"+season)
}

// PlayerGameStats returns player stats per game of a week.
func (c *SportsDataFantasy) PlayerGameStats(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/PlayerGameStatsByWeek", season, week)
}

// PlayerSeasonStats returns player season totals.
func (c *SportsDataFantasy) PlayerSeasonStats(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, true); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/PlayerSeasonStats/"+season)
}

// ProjectedDefenseGameStats returns projected defense stats per game.
func (c *SportsDataFantasy) ProjectedDefenseGameStats(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/FantasyDefenseProjectionsByGame", season, week)
}

// ProjectedDefenseSeasonStats returns projected defense season totals.
func (c *SportsDataFantasy) ProjectedDefenseSeasonStats(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, false); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/FantasyDefenseProjectionsBySeason/"+season)
}

// ProjectedPlayerGameStats returns projected player stats per game.
func (c *SportsDataFantasy) ProjectedPlayerGameStats(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/PlayerGameProjectionStatsByWeek", season, week)
}

// ProjectedPlayerSeasonStats returns projected player season totals.
func (c *SportsDataFantasy) ProjectedPlayerSeasonStats(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, false); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/PlayerSeasonProjectionStats/"+season)
}

// PregameOdds returns the odds of every game of a week.
func (c *SportsDataOdds) PregameOdds(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/GameOddsByWeek", season, week)
}

// LineMovement returns the line history of one game.
func (c *SportsDataOdds) LineMovement(ctx context.Context, scoreID int) (models.Records, error) {
	return c.fetch(ctx, fmt.Sprintf("/GameOddsLineMovement/%d", scoreID))
}

// Scores returns the scores of a season, or of one week when week is not nil.
func (c *SportsDataOdds) Scores(ctx context.Context, season string, week *int) (models.Records, error) {
	if err := models.RequireSeason(season, true); err != nil {
		return models.Records{}, err
	}
	if week != nil {
		return c.seasonWeek(ctx, "/ScoresByWeek", season, *week)
	}
	return c.fetch(ctx, "/Scores/"+season)
}

// Stadiums lists all active stadiums.
func (c *SportsDataOdds) Stadiums(ctx context.Context) (models.Records, error) {
	return c.fetch(ctx, "/Stadiums")
}

// TeamGameStats returns team stats per game of a week.
func (c *SportsDataOdds) TeamGameStats(ctx context.Context, season string, week int) (models.Records, error) {
	return c.seasonWeek(ctx, "/TeamGameStatsByWeek", season, week)
}

// TeamSeasonStats returns team season totals.
func (c *SportsDataOdds) TeamSeasonStats(ctx context.Context, season string) (models.Records, error) {
	if err := models.RequireSeason(season, false); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, "/TeamSeasonStats/"+season)
}

func (c *sportsDataClient) seasonWeek(ctx context.Context, path, season string, week int) (models.Records, error) {
	if err := models.RequireSeasonWeek(season, week); err != nil {
		return models.Records{}, err
	}
	return c.fetch(ctx, fmt.Sprintf("%s/%s/%d", path, season, week))
}
