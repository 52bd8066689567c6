package modeling

import (
	"fmt"
	"math"
	"sort"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"
	"nfl-projections-go/pipeline"
)

// TrainResult is the outcome of fitting one target.
type TrainResult struct {
	Target      string
	Model       *LinearRegression
	Metrics     models.TrainingMetrics
	Trues       []float64
	Predictions []float64
}

// Weights converts the fitted model for persistence.
func (r *TrainResult) Weights() models.ModelWeights {
	if r.Model == nil {
		return models.ModelWeights{Target: r.Target}
	}
	return models.ModelWeights{
		Target:       r.Target,
		Features:     append([]string{}, r.Model.Features...),
		Coefficients: append([]float64{}, r.Model.Coefficients...),
		Intercept:    r.Model.Intercept,
	}
}

// TestResult holds predictions for every row of a target table, in table
// row order.
type TestResult struct {
	Target      string
	Metrics     models.TrainingMetrics
	Trues       []float64
	Predictions []float64
}

// FeatureColumns is a target's inputs followed by the defense inputs.
func FeatureColumns(res *pipeline.Result, code string) []string {
	cols := append([]string{}, res.InputColumns[code]...)
	return append(cols, res.DefenseInputs()...)
}

// TrainAndValidate fits one model per offensive target on every season but
// holdout. Rows are shuffled with SplitSeed and ValidationFraction of them
// scores the fit. A target without enough rows gets NaN metrics and no model.
func TrainAndValidate(res *pipeline.Result, holdout int) (map[string]*TrainResult, error) {
	logger := logging.WithPrefix("train")
	out := make(map[string]*TrainResult, len(models.Targets))

	for _, target := range models.Targets {
		table, ok := res.Tables[target.Code]
		if !ok {
			continue
		}
		result := &TrainResult{
			Target:  target.Code,
			Metrics: models.TrainingMetrics{RMSE: math.NaN(), R2: math.NaN()},
		}
		out[target.Code] = result

		train := table.Filter(func(r pipeline.Row) bool { return r.Season != holdout })
		m := pipeline.BuildMatrix(train, FeatureColumns(res, target.Code), target.Stat)
		X, y := m.XY()

		trainIdx, testIdx := TrainTestSplit(len(y), ValidationFraction, SplitSeed)
		if len(trainIdx) == 0 {
			logger.Warnf("%s: %d rows outside holdout season %d, skipping", target.Code, len(y), holdout)
			continue
		}

		model, err := FitLinearRegression(take(X, trainIdx), take(y, trainIdx), m.FeatureNames)
		if err != nil {
			return nil, fmt.Errorf("fitting %s: %w", target.Code, err)
		}
		preds, err := model.Predict(take(X, testIdx))
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", target.Code, err)
		}

		result.Model = model
		result.Trues = take(y, testIdx)
		result.Predictions = preds
		result.Metrics = models.TrainingMetrics{
			RMSE: RMSE(result.Trues, preds),
			R2:   R2(result.Trues, preds),
			N:    len(trainIdx),
		}
		logger.Infof("%s: validation_rmse=%.4f r2=%.3f (train=%d valid=%d)",
			target.Code, result.Metrics.RMSE, result.Metrics.R2, len(trainIdx), len(testIdx))
	}
	return out, nil
}

// SaveModels writes every fitted model to store.
func SaveModels(store WeightsStore, results map[string]*TrainResult) error {
	for _, code := range sortedKeys(results) {
		r := results[code]
		if r.Model == nil {
			continue
		}
		if err := store.Save(r.Weights()); err != nil {
			return err
		}
	}
	return nil
}

// TestModel restores each offensive target's weights and predicts every row
// of its table. Features are matched by name; a saved feature the table
// lacks reads as 0.
func TestModel(res *pipeline.Result, store WeightsStore) (map[string]*TestResult, error) {
	logger := logging.WithPrefix("evaluate")
	out := make(map[string]*TestResult, len(models.Targets))

	for _, target := range models.Targets {
		table, ok := res.Tables[target.Code]
		if !ok {
			continue
		}
		w, err := store.Load(target.Code)
		if err != nil {
			return nil, err
		}
		model := &LinearRegression{Features: w.Features, Coefficients: w.Coefficients, Intercept: w.Intercept}

		m := pipeline.BuildMatrix(table, w.Features, target.Stat)
		X, y := m.XY()
		preds, err := model.Predict(X)
		if err != nil {
			return nil, fmt.Errorf("predicting %s: %w", target.Code, err)
		}

		result := &TestResult{
			Target:      target.Code,
			Trues:       y,
			Predictions: preds,
			Metrics:     models.TrainingMetrics{RMSE: RMSE(y, preds), R2: R2(y, preds), N: len(y)},
		}
		out[target.Code] = result
		logger.Infof("%s: rmse=%.4f r2=%.3f (n=%d)", target.Code, result.Metrics.RMSE, result.Metrics.R2, len(y))
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
