package models

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
)

// Metric prefixes of a combined projection column: "<Metric> <stat>".
const (
	MetricTrue      = "True"
	MetricProjected = "Projected"
	MetricAverage   = "Average"
	MetricSTD       = "STD"
)

// Metrics lists the per-stat metrics in column order.
var Metrics = []string{MetricTrue, MetricProjected, MetricAverage, MetricSTD}

// PointsStat is the pseudo-stat holding fantasy points.
const PointsStat = "Points"

// ProjectionRow is one player-week of the combined projections table.
type ProjectionRow struct {
	PlayerID          string `csv:"player_id" bson:"player_id" json:"player_id"`
	Season            int    `csv:"season" bson:"season" json:"season"`
	Week              int    `csv:"week" bson:"week" json:"week"`
	PlayerDisplayName string `csv:"player_display_name" bson:"player_display_name" json:"player_display_name"`
	Position          string `csv:"position" bson:"position" json:"position"`

	TrueRushingYards      float64 `csv:"True rushing_yards" bson:"true_rushing_yards" json:"True rushing_yards"`
	ProjectedRushingYards float64 `csv:"Projected rushing_yards" bson:"projected_rushing_yards" json:"Projected rushing_yards"`
	AverageRushingYards   float64 `csv:"Average rushing_yards" bson:"average_rushing_yards" json:"Average rushing_yards"`
	STDRushingYards       float64 `csv:"STD rushing_yards" bson:"std_rushing_yards" json:"STD rushing_yards"`

	TrueRushingTDs      float64 `csv:"True rushing_tds" bson:"true_rushing_tds" json:"True rushing_tds"`
	ProjectedRushingTDs float64 `csv:"Projected rushing_tds" bson:"projected_rushing_tds" json:"Projected rushing_tds"`
	AverageRushingTDs   float64 `csv:"Average rushing_tds" bson:"average_rushing_tds" json:"Average rushing_tds"`
	STDRushingTDs       float64 `csv:"STD rushing_tds" bson:"std_rushing_tds" json:"STD rushing_tds"`

	TrueReceivingYards      float64 `csv:"True receiving_yards" bson:"true_receiving_yards" json:"True receiving_yards"`
	ProjectedReceivingYards float64 `csv:"Projected receiving_yards" bson:"projected_receiving_yards" json:"Projected receiving_yards"`
	AverageReceivingYards   float64 `csv:"Average receiving_yards" bson:"average_receiving_yards" json:"Average receiving_yards"`
	STDReceivingYards       float64 `csv:"STD receiving_yards" bson:"std_receiving_yards" json:"STD receiving_yards"`

	TrueReceivingTDs      float64 `csv:"True receiving_tds" bson:"true_receiving_tds" json:"True receiving_tds"`
	ProjectedReceivingTDs float64 `csv:"Projected receiving_tds" bson:"projected_receiving_tds" json:"Projected receiving_tds"`
	AverageReceivingTDs   float64 `csv:"Average receiving_tds" bson:"average_receiving_tds" json:"Average receiving_tds"`
	STDReceivingTDs       float64 `csv:"STD receiving_tds" bson:"std_receiving_tds" json:"STD receiving_tds"`

	TrueReceptions      float64 `csv:"True receptions" bson:"true_receptions" json:"True receptions"`
	ProjectedReceptions float64 `csv:"Projected receptions" bson:"projected_receptions" json:"Projected receptions"`
	AverageReceptions   float64 `csv:"Average receptions" bson:"average_receptions" json:"Average receptions"`
	STDReceptions       float64 `csv:"STD receptions" bson:"std_receptions" json:"STD receptions"`

	TruePassingYards      float64 `csv:"True passing_yards" bson:"true_passing_yards" json:"True passing_yards"`
	ProjectedPassingYards float64 `csv:"Projected passing_yards" bson:"projected_passing_yards" json:"Projected passing_yards"`
	AveragePassingYards   float64 `csv:"Average passing_yards" bson:"average_passing_yards" json:"Average passing_yards"`
	STDPassingYards       float64 `csv:"STD passing_yards" bson:"std_passing_yards" json:"STD passing_yards"`

	TruePassingTDs      float64 `csv:"True passing_tds" bson:"true_passing_tds" json:"True passing_tds"`
	ProjectedPassingTDs float64 `csv:"Projected passing_tds" bson:"projected_passing_tds" json:"Projected passing_tds"`
	AveragePassingTDs   float64 `csv:"Average passing_tds" bson:"average_passing_tds" json:"Average passing_tds"`
	STDPassingTDs       float64 `csv:"STD passing_tds" bson:"std_passing_tds" json:"STD passing_tds"`

	TruePassingInterceptions      float64 `csv:"True passing_interceptions" bson:"true_passing_interceptions" json:"True passing_interceptions"`
	ProjectedPassingInterceptions float64 `csv:"Projected passing_interceptions" bson:"projected_passing_interceptions" json:"Projected passing_interceptions"`
	AveragePassingInterceptions   float64 `csv:"Average passing_interceptions" bson:"average_passing_interceptions" json:"Average passing_interceptions"`
	STDPassingInterceptions       float64 `csv:"STD passing_interceptions" bson:"std_passing_interceptions" json:"STD passing_interceptions"`

	TrueRushingFumblesLost      float64 `csv:"True rushing_fumbles_lost" bson:"true_rushing_fumbles_lost" json:"True rushing_fumbles_lost"`
	ProjectedRushingFumblesLost float64 `csv:"Projected rushing_fumbles_lost" bson:"projected_rushing_fumbles_lost" json:"Projected rushing_fumbles_lost"`
	AverageRushingFumblesLost   float64 `csv:"Average rushing_fumbles_lost" bson:"average_rushing_fumbles_lost" json:"Average rushing_fumbles_lost"`
	STDRushingFumblesLost       float64 `csv:"STD rushing_fumbles_lost" bson:"std_rushing_fumbles_lost" json:"STD rushing_fumbles_lost"`

	TrueReceivingFumblesLost      float64 `csv:"True receiving_fumbles_lost" bson:"true_receiving_fumbles_lost" json:"True receiving_fumbles_lost"`
	ProjectedReceivingFumblesLost float64 `csv:"Projected receiving_fumbles_lost" bson:"projected_receiving_fumbles_lost" json:"Projected receiving_fumbles_lost"`
	AverageReceivingFumblesLost   float64 `csv:"Average receiving_fumbles_lost" bson:"average_receiving_fumbles_lost" json:"Average receiving_fumbles_lost"`
	STDReceivingFumblesLost       float64 `csv:"STD receiving_fumbles_lost" bson:"std_receiving_fumbles_lost" json:"STD receiving_fumbles_lost"`

	TruePoints      float64 `csv:"True Points" bson:"true_points" json:"True Points"`
	ProjectedPoints float64 `csv:"Projected Points" bson:"projected_points" json:"Projected Points"`
}

// KeyColumns are the identifying columns that lead the table.
var KeyColumns = []string{"player_id", "season", "week", "player_display_name", "position"}

// ColumnName builds "<metric> <stat>".
func ColumnName(metric, stat string) string {
	return metric + " " + stat
}

// SplitColumnName is the inverse of ColumnName.
func SplitColumnName(col string) (metric, stat string, ok bool) {
	return strings.Cut(col, " ")
}

var (
	projectionFieldsOnce sync.Once
	projectionFields     map[string]int
	projectionColumns    []string
)

func loadProjectionFields() {
	projectionFieldsOnce.Do(func() {
		t := reflect.TypeOf(ProjectionRow{})
		projectionFields = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("csv")
			projectionFields[tag] = i
			projectionColumns = append(projectionColumns, tag)
		}
	})
}

// ProjectionColumns returns every column in struct order.
func ProjectionColumns() []string {
	loadProjectionFields()
	out := make([]string, len(projectionColumns))
	copy(out, projectionColumns)
	return out
}

// MetricColumns returns the numeric columns (every column except the keys).
func MetricColumns() []string {
	cols := ProjectionColumns()
	return cols[len(KeyColumns):]
}

// HasColumn reports whether col is a column of the table.
func HasColumn(col string) bool {
	loadProjectionFields()
	_, ok := projectionFields[col]
	return ok
}

// Metric returns a numeric column by its table name.
func (r *ProjectionRow) Metric(col string) (float64, bool) {
	loadProjectionFields()
	i, ok := projectionFields[col]
	if !ok {
		return math.NaN(), false
	}
	f := reflect.ValueOf(r).Elem().Field(i)
	if f.Kind() != reflect.Float64 {
		return math.NaN(), false
	}
	return f.Float(), true
}

// SetMetric assigns a numeric column by its table name.
func (r *ProjectionRow) SetMetric(col string, v float64) error {
	loadProjectionFields()
	i, ok := projectionFields[col]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingProjection, col)
	}
	f := reflect.ValueOf(r).Elem().Field(i)
	if f.Kind() != reflect.Float64 {
		return fmt.Errorf("column %s is not numeric", col)
	}
	f.SetFloat(v)
	return nil
}

// Value returns any column formatted for display.
func (r *ProjectionRow) Value(col string) any {
	switch col {
	case "player_id":
		return r.PlayerID
	case "season":
		return r.Season
	case "week":
		return r.Week
	case "player_display_name":
		return r.PlayerDisplayName
	case "position":
		return r.Position
	}
	v, _ := r.Metric(col)
	return v
}

// ApplyPoints fills TruePoints and ProjectedPoints from the row's True and
// Projected stat columns.
func (r *ProjectionRow) ApplyPoints(w ScoringWeights) error {
	for _, metric := range []string{MetricTrue, MetricProjected} {
		pts, err := w.Points(func(stat string) (float64, bool) {
			return r.Metric(ColumnName(metric, stat))
		})
		if err != nil {
			return err
		}
		if err := r.SetMetric(ColumnName(metric, PointsStat), pts); err != nil {
			return err
		}
	}
	return nil
}
