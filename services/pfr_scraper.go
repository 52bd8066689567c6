package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	PFRBaseURL               = "https://www.pro-football-reference.com/"
	DefaultPFRRequestsPerSec = 0.5
	pfrIndexLetters          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	pfrPassingTableID        = "passing"
	pfrSeasonField           = "season"
	pfrUserAgent             = "Mozilla/5.0 (compatible; nfl-projections-go)"
)

// DefaultPFRTables are the stat tables tried on a player page, in order of
// preference when several are present.
var DefaultPFRTables = []string{"rushing_and_receiving", "kicking", "passing", "defense"}

var ErrTableNotFound = errors.New("no matching stats table on page")

// SeasonStats is one parsed stat table: header fields and one row per
// season in page order.
type SeasonStats struct {
	TableID string
	Fields  []string
	Seasons []string
	Rows    map[string]map[string]string
}

// Records returns the table with a leading season column.
func (s SeasonStats) Records() models.Records {
	rows := make([]map[string]any, 0, len(s.Seasons))
	for _, season := range s.Seasons {
		row := map[string]any{pfrSeasonField: season}
		for k, v := range s.Rows[season] {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return models.NewRecords(rows)
}

// Only keeps the seasons whose leading year equals year.
func (s SeasonStats) Only(year int) SeasonStats {
	out := SeasonStats{TableID: s.TableID, Fields: s.Fields, Rows: map[string]map[string]string{}}
	want := fmt.Sprint(year)
	for _, season := range s.Seasons {
		if seasonYear(season) == want {
			out.Seasons = append(out.Seasons, season)
			out.Rows[season] = s.Rows[season]
		}
	}
	return out
}

// seasonYear drops award markers such as "2023*+".
func seasonYear(season string) string {
	return strings.TrimRightFunc(season, func(r rune) bool { return r < '0' || r > '9' })
}

// PFRScraper fetches pages from pro-football-reference, throttled by a
// token bucket.
type PFRScraper struct {
	baseURL *url.URL
	tables  []string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

// PFRConfig configures the scraper. Zero values take the defaults; a
// negative RequestsPerSecond disables throttling.
type PFRConfig struct {
	BaseURL           string
	Tables            []string
	RequestsPerSecond float64
	Client            *http.Client
}

// NewPFRScraper builds a scraper.
func NewPFRScraper(cfg PFRConfig) (*PFRScraper, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PFRBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing PFR base url: %w", err)
	}
	if len(cfg.Tables) == 0 {
		cfg.Tables = DefaultPFRTables
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	switch {
	case cfg.RequestsPerSecond == 0:
		limit = rate.Limit(DefaultPFRRequestsPerSec)
	case cfg.RequestsPerSecond < 0:
		limit = rate.Inf
	}
	return &PFRScraper{
		baseURL: base,
		tables:  cfg.Tables,
		client:  newHTTPClient(cfg.Client),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.WithPrefix("PFR"),
	}, nil
}

func (s *PFRScraper) resolve(link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", link, err)
	}
	return s.baseURL.ResolveReference(ref).String(), nil
}

func (s *PFRScraper) fetch(ctx context.Context, link string) (string, error) {
	u, err := s.resolve(link)
	if err != nil {
		return "", err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	s.logger.Debugf("GET %s", u)
	body, err := get(ctx, s.client, u, map[string]string{"User-Agent": pfrUserAgent})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// IndexEntry is one active player on a letter index page.
type IndexEntry struct {
	Name string
	Link string
}

// ExtractActivePlayers returns the bold (active) player links inside
// div#div_players, unique by name, in page order.
func ExtractActivePlayers(html string) ([]IndexEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}
	var out []IndexEntry
	seen := make(map[string]bool)
	doc.Find("div#div_players a[href]").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if name == "" || seen[name] {
			return
		}
		bold := a.Find("b, strong").Length() > 0 || a.Parent().Is("b, strong")
		if !bold {
			return
		}
		seen[name] = true
		out = append(out, IndexEntry{Name: name, Link: href})
	})
	return out, nil
}

// BuildIndex walks every letter page and returns the active players.
func (s *PFRScraper) BuildIndex(ctx context.Context) ([]IndexEntry, error) {
	var all []IndexEntry
	seen := make(map[string]bool)
	for _, letter := range pfrIndexLetters {
		html, err := s.fetch(ctx, "players/"+string(letter)+"/")
		if err != nil {
			return nil, fmt.Errorf("index %c: %w", letter, err)
		}
		entries, err := ExtractActivePlayers(html)
		if err != nil {
			return nil, fmt.Errorf("index %c: %w", letter, err)
		}
		for _, e := range entries {
			if !seen[e.Name] {
				seen[e.Name] = true
				all = append(all, e)
			}
		}
	}
	s.logger.Infof("Indexed %d active players", len(all))
	return all, nil
}

// ScrapePlayerStats fetches a player page and parses its first stat table.
func (s *PFRScraper) ScrapePlayerStats(ctx context.Context, link string) (SeasonStats, error) {
	html, err := s.fetch(ctx, link)
	if err != nil {
		return SeasonStats{}, err
	}
	return ParsePlayerStats(html, s.tables)
}

// ParsePlayerStats parses the first table (in document order) whose id is
// in tables. Tables hidden in HTML comments are included.
func ParsePlayerStats(html string, tables []string) (SeasonStats, error) {
	if strings.Contains(html, "<!--") && strings.Contains(html, "-->") {
		html = strings.NewReplacer("<!--", "", "-->", "").Replace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return SeasonStats{}, fmt.Errorf("parsing player page: %w", err)
	}

	selectors := make([]string, len(tables))
	for i, id := range tables {
		selectors[i] = "table#" + id
	}
	table := doc.Find(strings.Join(selectors, ", ")).First()
	if table.Length() == 0 {
		return SeasonStats{}, ErrTableNotFound
	}
	tableID := table.AttrOr("id", "")

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return SeasonStats{}, fmt.Errorf("%w: table %s has no rows", ErrTableNotFound, tableID)
	}
	header := rows.Eq(0)
	if tableID != pfrPassingTableID && rows.Length() > 1 {
		header = rows.Eq(1)
	}
	var fields []string
	header.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		field := c.AttrOr("data-stat", "")
		if field == "" {
			field = strings.TrimSpace(c.Text())
		}
		fields = append(fields, field)
	})

	out := SeasonStats{TableID: tableID, Fields: fields, Rows: map[string]map[string]string{}}
	body := table.Find("tbody")
	if body.Length() == 0 {
		body = table
	}
	body.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			return
		}
		season := strings.TrimSpace(tr.Find("th").First().Text())
		if season == "" {
			return
		}
		cells := make(map[string]string)
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			if key := td.AttrOr("data-stat", ""); key != "" {
				cells[key] = strings.TrimSpace(td.Text())
			}
		})
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			if f != "" {
				row[f] = cells[f]
			}
		}
		if _, dup := out.Rows[season]; !dup {
			out.Seasons = append(out.Seasons, season)
		}
		out.Rows[season] = row
	})
	return out, nil
}

// PFR resolves free-text player names to their pro-football-reference page
// and scrapes season stats.
type PFR struct {
	scraper *PFRScraper
	fuzzy   *FuzzyNameSearcher
	links   map[string]string
	logger  *logging.Logger
}

// NewPFR builds the active-player index. It makes one request per letter.
func NewPFR(ctx context.Context, cfg PFRConfig) (*PFR, error) {
	scraper, err := NewPFRScraper(cfg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	entries, err := scraper.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	links := make(map[string]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		links[e.Name] = e.Link
	}
	p := &PFR{scraper: scraper, fuzzy: NewFuzzyNameSearcher(names), links: links, logger: scraper.logger}
	p.logger.Debugf("Index built in %v", time.Since(start))
	return p, nil
}

// Resolve returns the canonical name and page link of the best match.
func (p *PFR) Resolve(name string) (string, string, error) {
	match, score := p.fuzzy.BestMatch(name, DefaultMatchThreshold)
	if match == "" {
		return "", "", fmt.Errorf("%w: %q (best score %.1f)", ErrNoMatch, name, score)
	}
	return match, p.links[match], nil
}

// PlayerStats scrapes the stat table of the player best matching name.
// A season of 0 keeps every season.
func (p *PFR) PlayerStats(ctx context.Context, name string, season int) (SeasonStats, error) {
	match, link, err := p.Resolve(name)
	if err != nil {
		return SeasonStats{}, err
	}
	p.logger.Infof("Resolved %q to %s (%s)", name, match, link)
	stats, err := p.scraper.ScrapePlayerStats(ctx, link)
	if err != nil {
		return SeasonStats{}, fmt.Errorf("%s: %w", match, err)
	}
	if season > 0 {
		stats = stats.Only(season)
	}
	return stats, nil
}
