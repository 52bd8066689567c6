package interfaces

import (
	"nfl-projections-go/database"
	"nfl-projections-go/modeling"
	"nfl-projections-go/services"
)

// Interface compliance checks - these will fail to compile if services don't implement interfaces
var (
	_ ProjectionProvider = (*services.ProjectionService)(nil)
	_ AuthService        = (*services.AuthService)(nil)
	_ RefreshScheduler   = (*services.BackgroundUpdater)(nil)
	_ WeeklyDataSource   = (*services.Nflverse)(nil)
	_ PlayerStatsScraper = (*services.PFR)(nil)

	_ services.InputLoader     = (*services.Nflverse)(nil)
	_ services.ProjectionStore = (*database.MongoProjectionRepository)(nil)
	_ services.Refresher       = services.RefreshFunc(nil)
	_ modeling.WeightsStore    = (*modeling.FileWeightsStore)(nil)
	_ modeling.RunRecorder     = (*database.MongoTrainingRunRepository)(nil)
)
