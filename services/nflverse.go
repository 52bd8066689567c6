package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"
	"nfl-projections-go/pipeline"

	"github.com/gocarina/gocsv"
)

const (
	NflverseReleaseURL     = "https://github.com/nflverse/nflverse-data/releases/download"
	NflverseDataRepoURL    = "https://github.com/nflverse/nfldata/raw/master/data"
	DynastyProcessURL      = "https://github.com/dynastyprocess/data/raw/master/files"
	FFOpportunityURL       = "https://github.com/ffverse/ffopportunity/releases/download/latest-data"
	FirstNflverseSeason    = 1999
	LastNflverseSeason     = 2025
	maxNflverseWeek        = 22
	nflverseUserAgentValue = "nfl-projections-go"
)

// Years is a normalized list of seasons. An empty Years means the current
// season.
type Years []int

func capYear(y int) int {
	return min(max(y, FirstNflverseSeason), LastNflverseSeason)
}

// NormalizeYears caps every year to the range covered by the data package.
func NormalizeYears(years ...int) Years {
	out := make(Years, len(years))
	for i, y := range years {
		out[i] = capYear(y)
	}
	return out
}

// YearRange returns from..to inclusive, clipped to the covered range.
func YearRange(from, to int) Years {
	from, to = capYear(from), capYear(to)
	if from > to {
		from, to = to, from
	}
	out := make(Years, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

// ParseYears accepts "2024", "2021,2023" or "2019-2024".
func ParseYears(s string) (Years, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if from, to, ok := strings.Cut(s, "-"); ok {
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidSeason, s)
		}
		b, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidSeason, s)
		}
		return YearRange(a, b), nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidSeason, part)
		}
		years = append(years, y)
	}
	return NormalizeYears(years...), nil
}

// NflverseConfig configures the nflverse loader. Empty URLs take the public
// defaults; an empty CacheDir disables the download cache.
type NflverseConfig struct {
	ReleaseURL     string
	DataRepoURL    string
	DynastyURL     string
	OpportunityURL string
	CacheDir       string
	Client         *http.Client
	Now            func() time.Time
}

// Nflverse loads the public nflverse data releases as CSV.
type Nflverse struct {
	cfg    NflverseConfig
	client *http.Client
	logger *logging.Logger
}

// NewNflverse builds the loader.
func NewNflverse(cfg NflverseConfig) *Nflverse {
	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = NflverseReleaseURL
	}
	if cfg.DataRepoURL == "" {
		cfg.DataRepoURL = NflverseDataRepoURL
	}
	if cfg.DynastyURL == "" {
		cfg.DynastyURL = DynastyProcessURL
	}
	if cfg.OpportunityURL == "" {
		cfg.OpportunityURL = FFOpportunityURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Nflverse{cfg: cfg, client: newHTTPClient(cfg.Client), logger: logging.WithPrefix("nflverse")}
}

// CurrentSeason returns the season in progress: the current year from the
// Thursday after Labor Day onwards, the previous year before it.
func (n *Nflverse) CurrentSeason() int {
	now := n.cfg.Now()
	if now.Before(seasonStart(now.Year())) {
		return now.Year() - 1
	}
	return now.Year()
}

// CurrentWeek returns the week of the current season, 1 before kickoff and
// capped at the last playoff week.
func (n *Nflverse) CurrentWeek() int {
	now := n.cfg.Now()
	start := seasonStart(n.CurrentSeason())
	if now.Before(start) {
		return 1
	}
	week := int(now.Sub(start).Hours()/24/7) + 1
	return min(week, maxNflverseWeek)
}

// seasonStart is the Thursday after Labor Day (first Monday of September).
func seasonStart(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 3)
}

func (n *Nflverse) years(years Years) Years {
	if len(years) == 0 {
		return Years{n.CurrentSeason()}
	}
	return years
}

// ClearCache removes cached downloads whose file name matches pattern (a
// filepath.Match glob); an empty pattern clears everything.
func (n *Nflverse) ClearCache(pattern string) (int, error) {
	if n.cfg.CacheDir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(n.cfg.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, e.Name())
			if err != nil {
				return removed, err
			}
			if !ok {
				continue
			}
		}
		if err := os.Remove(filepath.Join(n.cfg.CacheDir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	n.logger.Infof("Cleared %d cached files", removed)
	return removed, nil
}

func cacheName(url string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	return strings.NewReplacer("/", "_", ":", "_", "?", "_").Replace(name)
}

// download returns the decompressed CSV bytes of url, through the cache
// when one is configured.
func (n *Nflverse) download(ctx context.Context, url string) ([]byte, error) {
	var cached string
	if n.cfg.CacheDir != "" {
		cached = filepath.Join(n.cfg.CacheDir, cacheName(url))
		if data, err := os.ReadFile(cached); err == nil {
			n.logger.Debugf("Cache hit %s", path.Base(url))
			return data, nil
		}
	}

	n.logger.Debugf("GET %s", url)
	data, err := get(ctx, n.client, url, map[string]string{"User-Agent": nflverseUserAgentValue})
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(url, ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path.Base(url), err)
		}
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path.Base(url), err)
		}
	}

	if cached != "" {
		if err := os.MkdirAll(n.cfg.CacheDir, 0o755); err == nil {
			if err := os.WriteFile(cached, data, 0o644); err != nil {
				n.logger.Warnf("Could not cache %s: %v", path.Base(url), err)
			}
		}
	}
	return data, nil
}

func (n *Nflverse) records(ctx context.Context, url string) (models.Records, error) {
	data, err := n.download(ctx, url)
	if err != nil {
		return models.Records{}, err
	}
	return csvRecords(data)
}

func csvRecords(data []byte) (models.Records, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewRecords(nil), nil
	}
	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return models.Records{}, fmt.Errorf("parsing csv: %w", err)
	}
	return models.NewStringRecords(rows), nil
}

// perSeason loads one file per season and concatenates the rows.
func (n *Nflverse) perSeason(ctx context.Context, years Years, url func(int) string) (models.Records, error) {
	var rows []map[string]any
	for _, y := range n.years(years) {
		recs, err := n.records(ctx, url(y))
		if err != nil {
			return models.Records{}, fmt.Errorf("season %d: %w", y, err)
		}
		rows = append(rows, recs.Rows...)
	}
	return models.NewRecords(rows), nil
}

// filterSeasons keeps rows of the requested seasons; nil years keeps all.
func filterSeasons(recs models.Records, column string, years Years) models.Records {
	if len(years) == 0 {
		return recs
	}
	want := make(map[string]bool, len(years))
	for _, y := range years {
		want[strconv.Itoa(y)] = true
	}
	return recs.Filter(func(row map[string]any) bool {
		v, _ := row[column].(string)
		return want[v]
	})
}

func (n *Nflverse) release(tag, file string) string {
	return n.cfg.ReleaseURL + "/" + tag + "/" + file
}

func summarySuffix(level string) (string, error) {
	if err := models.RequireOption("summary level", level, "week", "reg", "post", "reg+post"); err != nil {
		return "", err
	}
	return strings.ReplaceAll(level, "+", ""), nil
}

// PlayByPlay loads play-by-play data.
func (n *Nflverse) PlayByPlay(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("pbp", fmt.Sprintf("play_by_play_%d.csv.gz", y))
	})
}

// PlayerStats loads player stats at the given summary level (week, reg,
// post or reg+post).
func (n *Nflverse) PlayerStats(ctx context.Context, years Years, level string) (models.Records, error) {
	suffix, err := summarySuffix(level)
	if err != nil {
		return models.Records{}, err
	}
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("stats_player", fmt.Sprintf("stats_player_%s_%d.csv", suffix, y))
	})
}

// TeamStats loads team stats at the given summary level.
func (n *Nflverse) TeamStats(ctx context.Context, years Years, level string) (models.Records, error) {
	suffix, err := summarySuffix(level)
	if err != nil {
		return models.Records{}, err
	}
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("stats_team", fmt.Sprintf("stats_team_%s_%d.csv", suffix, y))
	})
}

// Schedules loads the game schedule.
func (n *Nflverse) Schedules(ctx context.Context, years Years) (models.Records, error) {
	recs, err := n.records(ctx, n.release("schedules", "games.csv"))
	if err != nil {
		return recs, err
	}
	return filterSeasons(recs, "season", years), nil
}

// Players loads the player directory.
func (n *Nflverse) Players(ctx context.Context) (models.Records, error) {
	return n.records(ctx, n.release("players", "players.csv"))
}

// WeeklyRosters loads weekly rosters.
func (n *Nflverse) WeeklyRosters(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("weekly_rosters", fmt.Sprintf("roster_weekly_%d.csv", y))
	})
}

// SnapCounts loads snap counts.
func (n *Nflverse) SnapCounts(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("snap_counts", fmt.Sprintf("snap_counts_%d.csv", y))
	})
}

// NextGenStats loads passing, receiving or rushing next-gen stats.
func (n *Nflverse) NextGenStats(ctx context.Context, years Years, statType string) (models.Records, error) {
	if err := models.RequireOption("stat type", statType, "passing", "receiving", "rushing"); err != nil {
		return models.Records{}, err
	}
	recs, err := n.records(ctx, n.release("nextgen_stats", "ngs_"+statType+".csv.gz"))
	if err != nil {
		return recs, err
	}
	return filterSeasons(recs, "season", years), nil
}

// FTNCharting loads FTN charting data.
func (n *Nflverse) FTNCharting(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("ftn_charting", fmt.Sprintf("ftn_charting_%d.csv", y))
	})
}

// Participation loads play participation data.
func (n *Nflverse) Participation(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string {
		return n.release("pbp_participation", fmt.Sprintf("pbp_participation_%d.csv", y))
	})
}

// DraftPicks loads draft picks.
func (n *Nflverse) DraftPicks(ctx context.Context, years Years) (models.Records, error) {
	recs, err := n.records(ctx, n.release("draft_picks", "draft_picks.csv"))
	if err != nil {
		return recs, err
	}
	return filterSeasons(recs, "season", years), nil
}

// DraftValues loads the draft pick value charts.
func (n *Nflverse) DraftValues(ctx context.Context) (models.Records, error) {
	return n.records(ctx, n.cfg.DataRepoURL+"/draft_values.csv")
}

// Injuries loads weekly injury reports.
func (n *Nflverse) Injuries(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string { return n.injuriesURL(y) })
}

func (n *Nflverse) injuriesURL(y int) string {
	return n.release("injuries", fmt.Sprintf("injuries_%d.csv", y))
}

// Contracts loads historical contracts.
func (n *Nflverse) Contracts(ctx context.Context) (models.Records, error) {
	return n.records(ctx, n.release("contracts", "historical_contracts.csv.gz"))
}

// Officials loads game officials.
func (n *Nflverse) Officials(ctx context.Context, years Years) (models.Records, error) {
	recs, err := n.records(ctx, n.release("officials", "officials.csv"))
	if err != nil {
		return recs, err
	}
	return filterSeasons(recs, "season", years), nil
}

// Combine loads combine results.
func (n *Nflverse) Combine(ctx context.Context, years Years) (models.Records, error) {
	recs, err := n.records(ctx, n.release("combine", "combine.csv"))
	if err != nil {
		return recs, err
	}
	return filterSeasons(recs, "season", years), nil
}

// DepthCharts loads weekly depth charts.
func (n *Nflverse) DepthCharts(ctx context.Context, years Years) (models.Records, error) {
	return n.perSeason(ctx, years, func(y int) string { return n.depthChartsURL(y) })
}

func (n *Nflverse) depthChartsURL(y int) string {
	return n.release("depth_charts", fmt.Sprintf("depth_charts_%d.csv", y))
}

// Trades loads trades.
func (n *Nflverse) Trades(ctx context.Context) (models.Records, error) {
	return n.records(ctx, n.cfg.DataRepoURL+"/trades.csv")
}

// FantasyPlayerIDs loads the cross-platform fantasy id map.
func (n *Nflverse) FantasyPlayerIDs(ctx context.Context) (models.Records, error) {
	return n.records(ctx, n.cfg.DynastyURL+"/db_playerids.csv")
}

// FantasyRankings loads expert consensus rankings: draft, week or all.
func (n *Nflverse) FantasyRankings(ctx context.Context, rankingType string) (models.Records, error) {
	if err := models.RequireOption("ranking type", rankingType, "draft", "week", "all"); err != nil {
		return models.Records{}, err
	}
	file := map[string]string{
		"draft": "db_fpecr_latest.csv",
		"week":  "fp_latest_weekly.csv",
		"all":   "db_fpecr.csv.gz",
	}[rankingType]
	return n.records(ctx, n.cfg.DynastyURL+"/"+file)
}

// FantasyOpportunity loads expected fantasy points: weekly, pbp_pass or
// pbp_rush, for model version latest or v1.0.0.
func (n *Nflverse) FantasyOpportunity(ctx context.Context, years Years, statType, modelVersion string) (models.Records, error) {
	if err := models.RequireOption("stat type", statType, "weekly", "pbp_pass", "pbp_rush"); err != nil {
		return models.Records{}, err
	}
	if err := models.RequireOption("model version", modelVersion, "latest", "v1.0.0"); err != nil {
		return models.Records{}, err
	}
	base := n.cfg.OpportunityURL
	if modelVersion != "latest" {
		base = strings.TrimSuffix(base, "latest-data") + modelVersion + "-data"
	}
	return n.perSeason(ctx, years, func(y int) string {
		return fmt.Sprintf("%s/ep_%s_%d.csv.gz", base, statType, y)
	})
}

// PlayerWeeks loads weekly player box scores as typed rows.
func (n *Nflverse) PlayerWeeks(ctx context.Context, years Years) ([]models.PlayerWeek, error) {
	recs, err := n.PlayerStats(ctx, years, "week")
	if err != nil {
		return nil, err
	}
	return ToPlayerWeeks(recs), nil
}

// TeamWeeks loads weekly team lines as typed rows.
func (n *Nflverse) TeamWeeks(ctx context.Context, years Years) ([]models.TeamWeek, error) {
	recs, err := n.TeamStats(ctx, years, "week")
	if err != nil {
		return nil, err
	}
	return ToTeamWeeks(recs), nil
}

// InjuryReports loads injury reports as typed rows.
func (n *Nflverse) InjuryReports(ctx context.Context, years Years) ([]models.InjuryReport, error) {
	var out []models.InjuryReport
	for _, y := range n.years(years) {
		data, err := n.download(ctx, n.injuriesURL(y))
		if err != nil {
			return nil, fmt.Errorf("injuries %d: %w", y, err)
		}
		rows, err := ParseInjuryReports(data)
		if err != nil {
			return nil, fmt.Errorf("injuries %d: %w", y, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// DepthChart loads depth chart entries as typed rows.
func (n *Nflverse) DepthChart(ctx context.Context, years Years) ([]models.DepthChartEntry, error) {
	var out []models.DepthChartEntry
	for _, y := range n.years(years) {
		data, err := n.download(ctx, n.depthChartsURL(y))
		if err != nil {
			return nil, fmt.Errorf("depth charts %d: %w", y, err)
		}
		rows, err := ParseDepthChart(data)
		if err != nil {
			return nil, fmt.Errorf("depth charts %d: %w", y, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// PipelineInputs loads the four weekly tables the feature pipeline needs.
func (n *Nflverse) PipelineInputs(ctx context.Context, years Years) (pipeline.Inputs, error) {
	years = n.years(years)
	var in pipeline.Inputs
	var err error
	if in.Players, err = n.PlayerWeeks(ctx, years); err != nil {
		return in, fmt.Errorf("player stats: %w", err)
	}
	if in.Teams, err = n.TeamWeeks(ctx, years); err != nil {
		return in, fmt.Errorf("team stats: %w", err)
	}
	if in.Injuries, err = n.InjuryReports(ctx, years); err != nil {
		return in, err
	}
	if in.Depth, err = n.DepthChart(ctx, years); err != nil {
		return in, err
	}
	n.logger.Infof("Loaded %d player weeks, %d team weeks, %d injury reports, %d depth entries for %v",
		len(in.Players), len(in.Teams), len(in.Injuries), len(in.Depth), []int(years))
	return in, nil
}

var playerIdentityColumns = map[string]bool{
	"player_id": true, "player_name": true, "player_display_name": true,
	"position": true, "position_group": true, "headshot_url": true,
	"team": true, "recent_team": true, "opponent_team": true,
	"season": true, "week": true, "season_type": true,
}

var teamIdentityColumns = map[string]bool{
	"team": true, "opponent_team": true, "season": true, "week": true, "season_type": true,
}

// Older releases use the short names.
var statAliases = map[string]string{
	"interceptions": "passing_interceptions",
	"sacks":         "sacks_suffered",
}

func cell(row map[string]any, col string) string {
	s, _ := row[col].(string)
	return strings.TrimSpace(s)
}

func cellInt(row map[string]any, col string) int {
	v, _ := strconv.Atoi(cell(row, col))
	return v
}

// numericStats parses every non-identity column. Empty or NA cells become
// NaN; text columns are skipped.
func numericStats(row map[string]any, identity map[string]bool, aliases map[string]string) map[string]float64 {
	stats := make(map[string]float64, len(row))
	for col := range row {
		if identity[col] {
			continue
		}
		var s models.Stat
		if err := s.UnmarshalCSV(cell(row, col)); err != nil {
			continue
		}
		stats[col] = s.Float()
	}
	for from, to := range aliases {
		if v, ok := stats[from]; ok {
			if _, exists := stats[to]; !exists {
				stats[to] = v
			}
		}
	}
	return stats
}

// ToPlayerWeeks converts weekly player stats records.
func ToPlayerWeeks(recs models.Records) []models.PlayerWeek {
	out := make([]models.PlayerWeek, 0, recs.Len())
	for _, row := range recs.Rows {
		team := cell(row, "team")
		if team == "" {
			team = cell(row, "recent_team")
		}
		out = append(out, models.PlayerWeek{
			PlayerID:          cell(row, "player_id"),
			PlayerName:        cell(row, "player_name"),
			PlayerDisplayName: cell(row, "player_display_name"),
			Position:          cell(row, "position"),
			PositionGroup:     cell(row, "position_group"),
			Team:              team,
			OpponentTeam:      cell(row, "opponent_team"),
			Season:            cellInt(row, "season"),
			Week:              cellInt(row, "week"),
			SeasonType:        cell(row, "season_type"),
			Stats:             numericStats(row, playerIdentityColumns, statAliases),
		})
	}
	return out
}

// ToTeamWeeks converts weekly team stats records.
func ToTeamWeeks(recs models.Records) []models.TeamWeek {
	out := make([]models.TeamWeek, 0, recs.Len())
	for _, row := range recs.Rows {
		out = append(out, models.TeamWeek{
			Team:         cell(row, "team"),
			OpponentTeam: cell(row, "opponent_team"),
			Season:       cellInt(row, "season"),
			Week:         cellInt(row, "week"),
			SeasonType:   cell(row, "season_type"),
			Stats:        numericStats(row, teamIdentityColumns, nil),
		})
	}
	return out
}

type injuryCSVRow struct {
	Season         models.Stat `csv:"season"`
	Week           models.Stat `csv:"week"`
	GSISID         string      `csv:"gsis_id"`
	Team           string      `csv:"team"`
	ReportStatus   string      `csv:"report_status"`
	PracticeStatus string      `csv:"practice_status"`
}

type depthCSVRow struct {
	Season    models.Stat `csv:"season"`
	Week      models.Stat `csv:"week"`
	Club      string      `csv:"club_code"`
	Team      string      `csv:"team"`
	GSISID    string      `csv:"gsis_id"`
	Position  string      `csv:"position"`
	DepthTeam models.Stat `csv:"depth_team"`
}

func naString(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

// ParseInjuryReports decodes an injuries CSV. gsis_id becomes the player id.
func ParseInjuryReports(data []byte) ([]models.InjuryReport, error) {
	var rows []injuryCSVRow
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing injuries: %w", err)
	}
	out := make([]models.InjuryReport, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.Season.Float()) || math.IsNaN(r.Week.Float()) {
			continue
		}
		out = append(out, models.InjuryReport{
			PlayerID:       naString(r.GSISID),
			Season:         int(r.Season),
			Week:           int(r.Week),
			Team:           naString(r.Team),
			ReportStatus:   naString(r.ReportStatus),
			PracticeStatus: naString(r.PracticeStatus),
		})
	}
	return out, nil
}

// ParseDepthChart decodes a depth charts CSV. Entries without season or
// week are kept with HasSeasonWeek unset.
func ParseDepthChart(data []byte) ([]models.DepthChartEntry, error) {
	var rows []depthCSVRow
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing depth charts: %w", err)
	}
	out := make([]models.DepthChartEntry, 0, len(rows))
	for _, r := range rows {
		team := naString(r.Club)
		if team == "" {
			team = naString(r.Team)
		}
		e := models.DepthChartEntry{
			PlayerID:  naString(r.GSISID),
			Team:      team,
			Position:  naString(r.Position),
			DepthTeam: r.DepthTeam.Float(),
		}
		if !math.IsNaN(r.Season.Float()) && !math.IsNaN(r.Week.Float()) {
			e.Season, e.Week, e.HasSeasonWeek = int(r.Season), int(r.Week), true
		}
		out = append(out, e)
	}
	return out, nil
}
