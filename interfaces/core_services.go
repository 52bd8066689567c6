package interfaces

import (
	"context"

	"nfl-projections-go/models"
	"nfl-projections-go/services"
)

// WeeklyDataSource loads the weekly tables the pipeline consumes
type WeeklyDataSource interface {
	PlayerWeeks(ctx context.Context, years services.Years) ([]models.PlayerWeek, error)
	TeamWeeks(ctx context.Context, years services.Years) ([]models.TeamWeek, error)
	InjuryReports(ctx context.Context, years services.Years) ([]models.InjuryReport, error)
	DepthChart(ctx context.Context, years services.Years) ([]models.DepthChartEntry, error)
}

// PlayerStatsScraper resolves names and scrapes season tables
type PlayerStatsScraper interface {
	Resolve(name string) (canonical, link string, err error)
	PlayerStats(ctx context.Context, name string, season int) (services.SeasonStats, error)
}
