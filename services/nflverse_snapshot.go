package services

import (
	"fmt"
	"math"
	"sort"

	"nfl-projections-go/models"

	"github.com/parquet-go/parquet-go"
)

// Snapshot files hold the typed weekly tables so that a feature run can be
// repeated offline. Missing stats are left out of the list and come back as
// absent (NaN) on read.

type playerWeekRecord struct {
	PlayerID          string             `parquet:"player_id"`
	PlayerName        string             `parquet:"player_name"`
	PlayerDisplayName string             `parquet:"player_display_name"`
	Position          string             `parquet:"position"`
	PositionGroup     string             `parquet:"position_group"`
	Team              string             `parquet:"team"`
	OpponentTeam      string             `parquet:"opponent_team"`
	Season            int32              `parquet:"season"`
	Week              int32              `parquet:"week"`
	SeasonType        string             `parquet:"season_type"`
	Stats             []models.StatValue `parquet:"stats"`
}

type teamWeekRecord struct {
	Team         string             `parquet:"team"`
	OpponentTeam string             `parquet:"opponent_team"`
	Season       int32              `parquet:"season"`
	Week         int32              `parquet:"week"`
	SeasonType   string             `parquet:"season_type"`
	Stats        []models.StatValue `parquet:"stats"`
}

func statList(stats map[string]float64) []models.StatValue {
	out := make([]models.StatValue, 0, len(stats))
	for name, v := range stats {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, models.StatValue{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func statMap(list []models.StatValue) map[string]float64 {
	out := make(map[string]float64, len(list))
	for _, s := range list {
		out[s.Name] = s.Value
	}
	return out
}

// WritePlayerWeeksSnapshot writes player weeks to a parquet file.
func WritePlayerWeeksSnapshot(path string, rows []models.PlayerWeek) error {
	recs := make([]playerWeekRecord, len(rows))
	for i, p := range rows {
		recs[i] = playerWeekRecord{
			PlayerID:          p.PlayerID,
			PlayerName:        p.PlayerName,
			PlayerDisplayName: p.PlayerDisplayName,
			Position:          p.Position,
			PositionGroup:     p.PositionGroup,
			Team:              p.Team,
			OpponentTeam:      p.OpponentTeam,
			Season:            int32(p.Season),
			Week:              int32(p.Week),
			SeasonType:        p.SeasonType,
			Stats:             statList(p.Stats),
		}
	}
	if err := parquet.WriteFile(path, recs, parquet.Compression(&parquet.Snappy)); err != nil {
		return fmt.Errorf("writing player snapshot: %w", err)
	}
	return nil
}

// ReadPlayerWeeksSnapshot reads a file written by WritePlayerWeeksSnapshot.
func ReadPlayerWeeksSnapshot(path string) ([]models.PlayerWeek, error) {
	recs, err := parquet.ReadFile[playerWeekRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading player snapshot: %w", err)
	}
	out := make([]models.PlayerWeek, len(recs))
	for i, r := range recs {
		out[i] = models.PlayerWeek{
			PlayerID:          r.PlayerID,
			PlayerName:        r.PlayerName,
			PlayerDisplayName: r.PlayerDisplayName,
			Position:          r.Position,
			PositionGroup:     r.PositionGroup,
			Team:              r.Team,
			OpponentTeam:      r.OpponentTeam,
			Season:            int(r.Season),
			Week:              int(r.Week),
			SeasonType:        r.SeasonType,
			Stats:             statMap(r.Stats),
		}
	}
	return out, nil
}

// WriteTeamWeeksSnapshot writes team weeks to a parquet file.
func WriteTeamWeeksSnapshot(path string, rows []models.TeamWeek) error {
	recs := make([]teamWeekRecord, len(rows))
	for i, t := range rows {
		recs[i] = teamWeekRecord{
			Team:         t.Team,
			OpponentTeam: t.OpponentTeam,
			Season:       int32(t.Season),
			Week:         int32(t.Week),
			SeasonType:   t.SeasonType,
			Stats:        statList(t.Stats),
		}
	}
	if err := parquet.WriteFile(path, recs, parquet.Compression(&parquet.Snappy)); err != nil {
		return fmt.Errorf("writing team snapshot: %w", err)
	}
	return nil
}

// ReadTeamWeeksSnapshot reads a file written by WriteTeamWeeksSnapshot.
func ReadTeamWeeksSnapshot(path string) ([]models.TeamWeek, error) {
	recs, err := parquet.ReadFile[teamWeekRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading team snapshot: %w", err)
	}
	out := make([]models.TeamWeek, len(recs))
	for i, r := range recs {
		out[i] = models.TeamWeek{
			Team:         r.Team,
			OpponentTeam: r.OpponentTeam,
			Season:       int(r.Season),
			Week:         int(r.Week),
			SeasonType:   r.SeasonType,
			Stats:        statMap(r.Stats),
		}
	}
	return out, nil
}
