package models

import (
	"math"
	"strconv"
	"strings"
)

// Stat is a numeric CSV cell where "", "NA" and "NaN" mean missing.
type Stat float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (s *Stat) UnmarshalCSV(value string) error {
	v := strings.TrimSpace(value)
	switch v {
	case "", "NA", "NaN", "nan", "NULL":
		*s = Stat(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*s = Stat(f)
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (s Stat) MarshalCSV() (string, error) {
	if math.IsNaN(float64(s)) {
		return "", nil
	}
	return strconv.FormatFloat(float64(s), 'f', -1, 64), nil
}

// Float returns the value as float64.
func (s Stat) Float() float64 { return float64(s) }

// StatValue is one named numeric value, used where a flat repeated layout is
// needed (parquet snapshots).
type StatValue struct {
	Name  string  `parquet:"name" json:"name"`
	Value float64 `parquet:"value" json:"value"`
}

// PlayerWeek is one player's box score for one week.
type PlayerWeek struct {
	PlayerID          string             `json:"player_id" bson:"player_id"`
	PlayerName        string             `json:"player_name" bson:"player_name"`
	PlayerDisplayName string             `json:"player_display_name" bson:"player_display_name"`
	Position          string             `json:"position" bson:"position"`
	PositionGroup     string             `json:"position_group" bson:"position_group"`
	Team              string             `json:"team" bson:"team"`
	OpponentTeam      string             `json:"opponent_team" bson:"opponent_team"`
	Season            int                `json:"season" bson:"season"`
	Week              int                `json:"week" bson:"week"`
	SeasonType        string             `json:"season_type" bson:"season_type"`
	Stats             map[string]float64 `json:"stats" bson:"stats"`
}

// Stat returns a named stat, NaN when absent.
func (p PlayerWeek) Stat(name string) float64 {
	if v, ok := p.Stats[name]; ok {
		return v
	}
	return math.NaN()
}

// TeamWeek is one team's aggregate line for one week. Defensive stats carry
// the def_ prefix.
type TeamWeek struct {
	Team         string             `json:"team" bson:"team"`
	OpponentTeam string             `json:"opponent_team" bson:"opponent_team"`
	Season       int                `json:"season" bson:"season"`
	Week         int                `json:"week" bson:"week"`
	SeasonType   string             `json:"season_type" bson:"season_type"`
	Stats        map[string]float64 `json:"stats" bson:"stats"`
}

// Stat returns a named stat, NaN when absent.
func (t TeamWeek) Stat(name string) float64 {
	if v, ok := t.Stats[name]; ok {
		return v
	}
	return math.NaN()
}

// InjuryReport is one weekly injury report entry. Empty statuses mean the
// upstream cell was missing.
type InjuryReport struct {
	PlayerID       string `json:"player_id" bson:"player_id"`
	Season         int    `json:"season" bson:"season"`
	Week           int    `json:"week" bson:"week"`
	Team           string `json:"team" bson:"team"`
	ReportStatus   string `json:"report_status" bson:"report_status"`
	PracticeStatus string `json:"practice_status" bson:"practice_status"`
}

// DepthChartEntry places a player on a team depth chart for one week.
// DepthTeam is NaN when the source had no rank; HasSeasonWeek is false when
// season or week were missing.
type DepthChartEntry struct {
	PlayerID      string  `json:"player_id" bson:"player_id"`
	Team          string  `json:"team" bson:"team"`
	Position      string  `json:"position" bson:"position"`
	Season        int     `json:"season" bson:"season"`
	Week          int     `json:"week" bson:"week"`
	DepthTeam     float64 `json:"depth_team" bson:"depth_team"`
	HasSeasonWeek bool    `json:"-" bson:"-"`
}
