package models

// Category names a positional statistic group.
type Category string

const (
	CategoryPassing          Category = "passing"
	CategoryRushingReceiving Category = "rushing_and_receiving"
	CategoryPassingOrRushRec Category = "both"
	CategoryDefense          Category = "defense"
)

const (
	DefenseTargetCode    = "def"
	DefaultRollingPeriod = 4
	DefaultHoldoutSeason = 2024
	OpponentPrefix       = "vs_opponent_"
)

// CategoryPositions lists the positions belonging to each offensive group.
// Kicking is not available upstream.
var CategoryPositions = map[Category][]string{
	CategoryPassing:          {"QB"},
	CategoryRushingReceiving: {"RB", "WR", "TE", "QB"},
}

// StatColumnsByCategory lists the stat columns each positional table carries.
// Passing rows also carry the fumble columns so that fumble targets can be
// built from either group.
var StatColumnsByCategory = map[Category][]string{
	CategoryPassing: {
		"completions", "attempts", "passing_yards", "passing_tds",
		"passing_interceptions", "sacks_suffered", "passing_air_yards",
		"carries", "rushing_fumbles", "rushing_fumbles_lost",
		"receptions", "receiving_fumbles", "receiving_fumbles_lost",
	},
	CategoryRushingReceiving: {
		"carries", "rushing_yards", "rushing_tds", "rushing_fumbles", "rushing_fumbles_lost",
		"targets", "receptions", "receiving_yards", "receiving_tds",
		"receiving_fumbles", "receiving_fumbles_lost",
	},
	CategoryDefense: {
		"def_sacks", "def_interceptions", "def_tackles_for_loss",
		"def_qb_hits", "def_pass_defended", "def_fumbles_forced",
	},
}

// Target is one statistic with a dedicated regression model.
type Target struct {
	Code     string
	Stat     string
	Category Category
	// Inputs are the raw columns that get window features. Each offensive
	// target includes its own stat.
	Inputs []string
}

// Targets is the fixed, ordered set of offensive targets.
var Targets = []Target{
	{Code: "rsh_yd", Stat: "rushing_yards", Category: CategoryRushingReceiving, Inputs: []string{"carries", "rushing_yards"}},
	{Code: "rsh_td", Stat: "rushing_tds", Category: CategoryRushingReceiving, Inputs: []string{"carries", "rushing_yards", "rushing_tds"}},
	{Code: "rc_yd", Stat: "receiving_yards", Category: CategoryRushingReceiving, Inputs: []string{"targets", "receptions", "receiving_yards"}},
	{Code: "rc_td", Stat: "receiving_tds", Category: CategoryRushingReceiving, Inputs: []string{"targets", "receiving_yards", "receiving_tds"}},
	{Code: "rc", Stat: "receptions", Category: CategoryRushingReceiving, Inputs: []string{"targets", "receptions"}},
	{Code: "p_yd", Stat: "passing_yards", Category: CategoryPassing, Inputs: []string{"attempts", "completions", "passing_yards"}},
	{Code: "p_td", Stat: "passing_tds", Category: CategoryPassing, Inputs: []string{"attempts", "passing_yards", "passing_tds"}},
	{Code: "intcpt", Stat: "passing_interceptions", Category: CategoryPassing, Inputs: []string{"attempts", "sacks_suffered", "passing_interceptions"}},
	{Code: "rsh_fmbls", Stat: "rushing_fumbles_lost", Category: CategoryPassingOrRushRec, Inputs: []string{"carries", "rushing_fumbles", "rushing_fumbles_lost"}},
	{Code: "rc_fmbls", Stat: "receiving_fumbles_lost", Category: CategoryPassingOrRushRec, Inputs: []string{"receptions", "receiving_fumbles", "receiving_fumbles_lost"}},
}

// DefenseTarget describes the team-level defensive table merged onto every
// offensive target. It has no model of its own.
var DefenseTarget = Target{
	Code:     DefenseTargetCode,
	Category: CategoryDefense,
	Inputs:   StatColumnsByCategory[CategoryDefense],
}

// TargetByCode looks up a target; "def" returns DefenseTarget.
func TargetByCode(code string) (Target, bool) {
	if code == DefenseTargetCode {
		return DefenseTarget, true
	}
	for _, t := range Targets {
		if t.Code == code {
			return t, true
		}
	}
	return Target{}, false
}

// TargetByStat looks up an offensive target by its stat column.
func TargetByStat(stat string) (Target, bool) {
	for _, t := range Targets {
		if t.Stat == stat {
			return t, true
		}
	}
	return Target{}, false
}

// TargetCodes returns the offensive target codes in catalog order.
func TargetCodes() []string {
	out := make([]string, len(Targets))
	for i, t := range Targets {
		out[i] = t.Code
	}
	return out
}
