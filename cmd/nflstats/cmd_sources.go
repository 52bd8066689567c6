package main

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nfl-projections-go/interfaces"
	"nfl-projections-go/models"
	"nfl-projections-go/services"

	"github.com/spf13/cobra"
)

var (
	sourceSeason int
	sourceWeek   int
	sourceType   string
	sourceDate   string
	sourceOut    string
	yahooCode    string

	yahooStats services.YahooStatsRequest
)

// pfrCmd scrapes one player's season table
var pfrCmd = &cobra.Command{
	Use:   "pfr <player name>",
	Short: "Scrape a player's season stats from pro-football-reference",
	Long: `Builds the active-player index, resolves the name with fuzzy matching
and scrapes the player's stat tables. --season keeps a single season.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPFR,
}

// sportsDataCmd calls one SportsDataIO endpoint
var sportsDataCmd = &cobra.Command{
	Use:   "sportsdata <endpoint>",
	Short: "Call a SportsDataIO endpoint",
	Long:  fmt.Sprintf("Calls one SportsDataIO endpoint and describes the result.\n\nEndpoints: %v", sportsDataEndpointNames()),
	Args:  cobra.ExactArgs(1),
	RunE:  runSportsData,
}

// yahooCmd groups the Yahoo fantasy commands
var yahooCmd = &cobra.Command{
	Use:   "yahoo",
	Short: "Yahoo fantasy API commands",
}

var yahooAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to the Yahoo fantasy API",
	Long: `Prints the consent URL, reads the verifier code (from --code or stdin)
and saves the token to YAHOO_TOKEN_FILE.`,
	Args: cobra.NoArgs,
	RunE: runYahooAuth,
}

var yahooLeagueCmd = &cobra.Command{
	Use:   "league <draft|positions|stat-categories|week|player NAME|stats ID...>",
	Short: "Query the first league of the authorized user",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runYahooLeague,
}

func init() {
	pfrCmd.Flags().IntVar(&sourceSeason, "season", 0, "keep only this season")
	pfrCmd.Flags().StringVarP(&sourceOut, "out", "o", "", "write the table as CSV")

	sportsDataCmd.Flags().IntVar(&sourceSeason, "season", 0, "season (default current nflverse season)")
	sportsDataCmd.Flags().IntVar(&sourceWeek, "week", 1, "week for per-week endpoints")
	sportsDataCmd.Flags().StringVar(&sourceType, "type", "", "type for player-details (active|free-agents|by-team) and timeframes (current|upcoming|completed|recent|all)")
	sportsDataCmd.Flags().StringVar(&sourceDate, "date", "", "date for dfs-slates-by-date (YYYY-MM-DD)")
	sportsDataCmd.Flags().StringVarP(&sourceOut, "out", "o", "", "write the table as CSV")

	yahooAuthCmd.Flags().StringVar(&yahooCode, "code", "", "verifier code from the consent page")
	yahooLeagueCmd.Flags().StringVar(&yahooStats.Type, "type", "season", "stats coverage: season, week or date")
	yahooLeagueCmd.Flags().IntVar(&yahooStats.Season, "season", 0, "stats season")
	yahooLeagueCmd.Flags().IntVar(&yahooStats.Week, "week", 0, "stats week")
	yahooLeagueCmd.Flags().StringVar(&yahooStats.Date, "date", "", "stats date (YYYY-MM-DD)")
	yahooLeagueCmd.Flags().StringVarP(&sourceOut, "out", "o", "", "write the table as CSV")
	yahooCmd.AddCommand(yahooAuthCmd, yahooLeagueCmd)
}

func runPFR(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	pfr, err := services.NewPFR(ctx, services.PFRConfig{
		BaseURL:           cfg.Sources.PFRBaseURL,
		RequestsPerSecond: cfg.Sources.PFRRequestsPerSecond,
		Client:            httpClient(),
	})
	if err != nil {
		return err
	}
	return scrapePlayer(ctx, cmd, pfr, strings.Join(args, " "))
}

func scrapePlayer(ctx context.Context, cmd *cobra.Command, scraper interfaces.PlayerStatsScraper, name string) error {
	canonical, link, err := scraper.Resolve(name)
	if err != nil {
		return err
	}
	printf(cmd, "%s -> %s\n", canonical, link)
	stats, err := scraper.PlayerStats(ctx, canonical, sourceSeason)
	if err != nil {
		return err
	}
	return report(cmd, canonical, stats.Records())
}

type sportsDataEndpoint func(ctx context.Context, sd *services.SportsDataIO, season string) (models.Records, error)

var sportsDataEndpoints = map[string]sportsDataEndpoint{
	"bye-weeks": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Core.ByeWeeks(ctx, s)
	},
	"player-details": func(ctx context.Context, sd *services.SportsDataIO, _ string) (models.Records, error) {
		return sd.Core.PlayerDetails(ctx, sourceType)
	},
	"rookies": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Core.Rookies(ctx, s)
	},
	"standings": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Core.Standings(ctx, s)
	},
	"teams": func(ctx context.Context, sd *services.SportsDataIO, _ string) (models.Records, error) {
		return sd.Core.Teams(ctx)
	},
	"timeframes": func(ctx context.Context, sd *services.SportsDataIO, _ string) (models.Records, error) {
		return sd.Core.Timeframes(ctx, sourceType)
	},
	"dfs-slates-by-date": func(ctx context.Context, sd *services.SportsDataIO, _ string) (models.Records, error) {
		return sd.Fantasy.DFSSlatesByDate(ctx, sourceDate)
	},
	"dfs-slates-by-week": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.DFSSlatesByWeek(ctx, s, sourceWeek)
	},
	"defense-game-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.DefenseGameStats(ctx, s, sourceWeek)
	},
	"defense-season-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.DefenseSeasonStats(ctx, s)
	},
	"player-game-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.PlayerGameStats(ctx, s, sourceWeek)
	},
	"player-season-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.PlayerSeasonStats(ctx, s)
	},
	"projected-defense-game-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.ProjectedDefenseGameStats(ctx, s, sourceWeek)
	},
	"projected-defense-season-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.ProjectedDefenseSeasonStats(ctx, s)
	},
	"projected-player-game-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.ProjectedPlayerGameStats(ctx, s, sourceWeek)
	},
	"projected-player-season-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Fantasy.ProjectedPlayerSeasonStats(ctx, s)
	},
	"pregame-odds": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Odds.PregameOdds(ctx, s, sourceWeek)
	},
	"scores": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		week := sourceWeek
		return sd.Odds.Scores(ctx, s, &week)
	},
	"stadiums": func(ctx context.Context, sd *services.SportsDataIO, _ string) (models.Records, error) {
		return sd.Odds.Stadiums(ctx)
	},
	"team-game-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Odds.TeamGameStats(ctx, s, sourceWeek)
	},
	"team-season-stats": func(ctx context.Context, sd *services.SportsDataIO, s string) (models.Records, error) {
		return sd.Odds.TeamSeasonStats(ctx, s)
	},
}

func sportsDataEndpointNames() []string {
	names := make([]string, 0, len(sportsDataEndpoints))
	for name := range sportsDataEndpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runSportsData(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	call, ok := sportsDataEndpoints[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown endpoint %q", models.ErrInvalidOption, args[0])
	}
	sd, err := services.NewSportsDataIO(services.SportsDataIOConfig{
		APIKey: cfg.Sources.SportsDataIOKey,
		Client: httpClient(),
	})
	if err != nil {
		return err
	}

	season := sourceSeason
	if season == 0 {
		season = newNflverse().CurrentSeason()
	}
	recs, err := call(ctx, sd, strconv.Itoa(season))
	if err != nil {
		return err
	}
	return report(cmd, args[0], recs)
}

func runYahooAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	oauthCfg := services.YahooOAuthConfig(cfg.Sources.YahooClientID, cfg.Sources.YahooClientSecret)
	code := yahooCode
	if code == "" {
		printf(cmd, "Open this URL and approve access:\n\n  %s\n\nVerifier code: ", oauthCfg.AuthCodeURL("state"))
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading verifier code: %w", err)
		}
		code = line
	}
	if err := services.ExchangeYahooCode(ctx, oauthCfg, code, cfg.Sources.YahooTokenFile); err != nil {
		return err
	}
	printf(cmd, "Saved token to %s\n", cfg.Sources.YahooTokenFile)
	return nil
}

func runYahooLeague(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	y, err := services.NewYahoo(ctx, services.YahooConfig{
		ClientID:     cfg.Sources.YahooClientID,
		ClientSecret: cfg.Sources.YahooClientSecret,
		TokenFile:    cfg.Sources.YahooTokenFile,
	})
	if err != nil {
		return err
	}
	league := y.League

	var recs models.Records
	switch args[0] {
	case "draft":
		recs, err = league.DraftResults(ctx)
	case "positions":
		recs, err = league.Positions(ctx)
	case "stat-categories":
		recs, err = league.StatCategories(ctx)
	case "week":
		current, err := league.CurrentWeek(ctx)
		if err != nil {
			return err
		}
		end, err := league.EndWeek(ctx)
		if err != nil {
			return err
		}
		printf(cmd, "Current week %d of %d\n", current, end)
		return nil
	case "player":
		if len(args) < 2 {
			return fmt.Errorf("player name required")
		}
		recs, err = league.PlayerDetails(ctx, strings.Join(args[1:], " "))
	case "stats":
		ids, perr := parseIDs(args[1:])
		if perr != nil {
			return perr
		}
		recs, err = league.PlayerStats(ctx, ids, yahooStats)
	default:
		return fmt.Errorf("%w: unknown league query %q", models.ErrInvalidOption, args[0])
	}
	if err != nil {
		return err
	}
	return report(cmd, args[0], recs)
}

func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one player id required")
	}
	ids := make([]int, len(args))
	for i, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("player id %q: %w", a, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// report describes recs and optionally writes them to --out.
func report(cmd *cobra.Command, name string, recs models.Records) error {
	printf(cmd, "%s\n", recs.Describe(name))
	if sourceOut == "" {
		return nil
	}
	if err := writeRecordsCSV(sourceOut, recs); err != nil {
		return err
	}
	printf(cmd, "Wrote %d rows to %s\n", len(recs.Rows), sourceOut)
	return nil
}
