package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"nfl-projections-go/interfaces"
	"nfl-projections-go/models"
	"nfl-projections-go/services"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var (
	fetchOut        string
	fetchSnapshot   string
	fetchLevel      string
	fetchStatType   string
	fetchClearCache string
)

// nflverseTables maps a table name to its loader.
var nflverseTables = map[string]func(ctx context.Context, n *services.Nflverse, years services.Years) (models.Records, error){
	"play_by_play":   func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.PlayByPlay(ctx, y) },
	"player_stats":   func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.PlayerStats(ctx, y, fetchLevel) },
	"team_stats":     func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.TeamStats(ctx, y, fetchLevel) },
	"schedules":      func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.Schedules(ctx, y) },
	"players":        func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.Players(ctx) },
	"weekly_rosters": func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.WeeklyRosters(ctx, y) },
	"snap_counts":    func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.SnapCounts(ctx, y) },
	"nextgen_stats": func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) {
		return n.NextGenStats(ctx, y, fetchStatType)
	},
	"ftn_charting":     func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.FTNCharting(ctx, y) },
	"participation":    func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.Participation(ctx, y) },
	"draft_picks":      func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.DraftPicks(ctx, y) },
	"draft_values":     func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.DraftValues(ctx) },
	"injuries":         func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.Injuries(ctx, y) },
	"contracts":        func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.Contracts(ctx) },
	"officials":        func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.Officials(ctx, y) },
	"combine":          func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.Combine(ctx, y) },
	"depth_charts":     func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) { return n.DepthCharts(ctx, y) },
	"trades":           func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.Trades(ctx) },
	"fantasy_ids":      func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.FantasyPlayerIDs(ctx) },
	"fantasy_rankings": func(ctx context.Context, n *services.Nflverse, _ services.Years) (models.Records, error) { return n.FantasyRankings(ctx, fetchStatType) },
	"fantasy_opportunity": func(ctx context.Context, n *services.Nflverse, y services.Years) (models.Records, error) {
		return n.FantasyOpportunity(ctx, y, fetchStatType, "latest")
	},
}

func tableNames() []string {
	names := make([]string, 0, len(nflverseTables))
	for name := range nflverseTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fetchCmd downloads one nflverse table
var fetchCmd = &cobra.Command{
	Use:   "fetch [table]",
	Short: "Download an nflverse table and describe it",
	Long: fmt.Sprintf(`Downloads one nflverse table for --seasons and prints a column summary.

With --out the table is written as CSV. With --snapshot DIR the typed weekly
player and team tables are written as parquet instead.

Tables: %v`, tableNames()),
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "write the table as CSV")
	fetchCmd.Flags().StringVar(&fetchSnapshot, "snapshot", "", "write typed player/team weeks as parquet into this directory")
	fetchCmd.Flags().StringVar(&fetchLevel, "level", "week", "summary level for player_stats/team_stats: week, reg, post, reg+post")
	fetchCmd.Flags().StringVar(&fetchStatType, "stat-type", "", "stat type for nextgen_stats (passing|rushing|receiving), fantasy_rankings (draft|week|all) or fantasy_opportunity (weekly|pbp_pass|pbp_rush)")
	fetchCmd.Flags().StringVar(&fetchClearCache, "clear-cache", "", "remove cached downloads matching this glob first")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	n := newNflverse()
	if fetchClearCache != "" {
		removed, err := n.ClearCache(fetchClearCache)
		if err != nil {
			return err
		}
		printf(cmd, "Removed %d cached files\n", removed)
	}

	years, err := selectedYears()
	if err != nil {
		return err
	}

	if fetchSnapshot != "" {
		return writeSnapshot(ctx, cmd, n, years)
	}
	if len(args) == 0 {
		return fmt.Errorf("table name required, one of %v", tableNames())
	}

	load, ok := nflverseTables[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown table %q", models.ErrInvalidOption, args[0])
	}
	recs, err := load(ctx, n, years)
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", recs.Describe(args[0]))

	if fetchOut != "" {
		return writeRecordsCSV(fetchOut, recs)
	}
	return nil
}

func writeSnapshot(ctx context.Context, cmd *cobra.Command, n interfaces.WeeklyDataSource, years services.Years) error {
	players, err := n.PlayerWeeks(ctx, years)
	if err != nil {
		return err
	}
	teams, err := n.TeamWeeks(ctx, years)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(fetchSnapshot, 0o755); err != nil {
		return err
	}
	playerPath := filepath.Join(fetchSnapshot, "player_weeks.parquet")
	if err := services.WritePlayerWeeksSnapshot(playerPath, players); err != nil {
		return err
	}
	teamPath := filepath.Join(fetchSnapshot, "team_weeks.parquet")
	if err := services.WriteTeamWeeksSnapshot(teamPath, teams); err != nil {
		return err
	}
	printf(cmd, "Wrote %d player weeks to %s and %d team weeks to %s\n", len(players), playerPath, len(teams), teamPath)
	return nil
}

// writeRecordsCSV writes recs with its columns in order; missing cells are
// empty.
func writeRecordsCSV(path string, recs models.Records) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := gocsv.DefaultCSVWriter(f)
	if err := w.Write(recs.Columns); err != nil {
		_ = f.Close()
		return err
	}
	line := make([]string, len(recs.Columns))
	for _, row := range recs.Rows {
		for i, col := range recs.Columns {
			if v, ok := row[col]; ok && v != nil {
				line[i] = fmt.Sprint(v)
			} else {
				line[i] = ""
			}
		}
		if err := w.Write(line); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
