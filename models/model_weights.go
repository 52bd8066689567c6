package models

import "time"

// ModelWeights is a fitted linear model for one target.
type ModelWeights struct {
	Target       string    `bson:"target" json:"target"`
	Features     []string  `bson:"features" json:"features"`
	Coefficients []float64 `bson:"coefficients" json:"coefficients"`
	Intercept    float64   `bson:"intercept" json:"intercept"`
}

// TrainingMetrics are the validation scores of one fit.
type TrainingMetrics struct {
	RMSE float64 `bson:"rmse" json:"rmse"`
	R2   float64 `bson:"r2" json:"r2"`
	N    int     `bson:"n" json:"n"`
}

// TrainingRun is the database copy of a fitted model.
type TrainingRun struct {
	RunID     string          `bson:"run_id" json:"run_id"`
	Target    string          `bson:"target" json:"target"`
	Holdout   int             `bson:"holdout_season" json:"holdout_season"`
	Weights   ModelWeights    `bson:"weights" json:"weights"`
	Metrics   TrainingMetrics `bson:"metrics" json:"metrics"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}
