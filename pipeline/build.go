package pipeline

import (
	"fmt"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"
)

// Inputs are the raw weekly tables the pipeline consumes.
type Inputs struct {
	Players  []models.PlayerWeek
	Teams    []models.TeamWeek
	Injuries []models.InjuryReport
	Depth    []models.DepthChartEntry
}

// Options tune the pipeline.
type Options struct {
	RollingPeriod int
}

// Result holds one feature table per target code (including "def") and the
// model input columns of each.
type Result struct {
	Tables       map[string]*Table
	InputColumns map[string][]string
	InjuryNames  []string
	Scalers      map[string]*Scaler
}

// DefenseInputs returns the defense table's model inputs.
func (r *Result) DefenseInputs() []string {
	return r.InputColumns[models.DefenseTargetCode]
}

// InputColumns lists the model inputs of an offensive target: rolling
// means, season cumulative mean and std, vs-opponent cumulative mean and std,
// depth and the injury one-hots.
func InputColumns(target models.Target, injuryNames []string, period int) []string {
	var out []string
	for _, c := range target.Inputs {
		out = append(out, RollingColumn(c, period))
	}
	for _, c := range target.Inputs {
		out = append(out, CumAvgColumn("", c))
	}
	for _, c := range target.Inputs {
		out = append(out, CumStdColumn("", c))
	}
	for _, c := range target.Inputs {
		out = append(out, CumAvgColumn(models.OpponentPrefix, c))
	}
	for _, c := range target.Inputs {
		out = append(out, CumStdColumn(models.OpponentPrefix, c))
	}
	out = append(out, DepthColumn)
	out = append(out, injuryNames...)
	return out
}

// DefenseInputColumns lists the defense table's rolling columns.
func DefenseInputColumns(period int) []string {
	out := make([]string, len(models.DefenseTarget.Inputs))
	for i, c := range models.DefenseTarget.Inputs {
		out[i] = RollingColumn(c, period)
	}
	return out
}

// Run executes the full feature pipeline: encode injuries, filter depth,
// merge, split by positional group, build per-target tables, add window
// features, scale inputs and merge the defense table onto every offensive
// target.
func Run(in Inputs, opts Options) (*Result, error) {
	logger := logging.WithPrefix("pipeline")

	period := opts.RollingPeriod
	if period == 0 {
		period = models.DefaultRollingPeriod
	}
	if period < 0 {
		return nil, fmt.Errorf("rolling period must be positive, got %d", period)
	}

	injuries := EncodeInjuries(in.Injuries)
	depth := FilterDepth(in.Depth)
	merged := MergePlayers(in.Players, injuries, depth)
	logger.Infof("Merged %d player rows with %d injury features and %d depth entries",
		len(merged), len(injuries.Names), len(depth))

	passing := FilterByPositionalGroup(merged, models.CategoryPassing, injuries.Names)
	rushRec := FilterByPositionalGroup(merged, models.CategoryRushingReceiving, injuries.Names)
	logger.Debugf("Positional groups: passing=%d rushing_and_receiving=%d", len(passing), len(rushRec))

	tables := BuildTargetTables(passing, rushRec, in.Teams, injuries.Names)

	res := &Result{
		Tables:       tables,
		InputColumns: make(map[string][]string, len(tables)),
		InjuryNames:  injuries.Names,
		Scalers:      make(map[string]*Scaler, len(tables)),
	}

	def := tables[models.DefenseTargetCode]
	Rolling(def, models.DefenseTarget.Inputs, BySeasonTeam, SortKeyTeam, period)
	Cumulative(def, models.DefenseTarget.Inputs, BySeasonTeam, SortKeyTeam, "")
	res.InputColumns[models.DefenseTargetCode] = DefenseInputColumns(period)
	res.Scalers[models.DefenseTargetCode] = Scale(def, res.DefenseInputs())

	for _, target := range models.Targets {
		t := tables[target.Code]
		Rolling(t, target.Inputs, BySeasonPlayer, SortKeyPlayer, period)
		Cumulative(t, target.Inputs, BySeasonPlayer, SortKeyPlayer, "")
		Cumulative(t, target.Inputs, ByOpponentPlayer, SortKeyPlayer, models.OpponentPrefix)
		KeepDisplayCopies(t, target.Stat)

		cols := InputColumns(target, injuries.Names, period)
		res.InputColumns[target.Code] = cols
		res.Scalers[target.Code] = Scale(t, cols)

		MergeDefense(t, def, res.DefenseInputs())
		logger.Debugf("Target %s: %d rows, %d inputs", target.Code, t.Len(), len(cols))
	}

	return res, nil
}
