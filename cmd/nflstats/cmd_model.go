package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"nfl-projections-go/database"
	"nfl-projections-go/logging"
	"nfl-projections-go/modeling"
	"nfl-projections-go/models"
	"nfl-projections-go/pipeline"
	"nfl-projections-go/services"

	"github.com/spf13/cobra"
)

var (
	fromSnapshot string
	holdout      int
	recordRuns   bool
	featuresOut  string
	projectOut   string
	projectStore bool
)

// featuresCmd writes one parquet training matrix per target
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the feature tables and write training matrices",
	Long: `Runs the feature pipeline over --seasons and writes one parquet matrix
per target (including the defense table) into --out.`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

// trainCmd fits and saves the per-target models
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit one linear regression per target and save the weights",
	Long: `Fits every offensive target on all seasons except --holdout, prints the
validation metrics and writes the weights to SAVED_WEIGHTS_PATH.

With --record the run is also stored in MongoDB under a new run id.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

// evaluateCmd scores the saved weights
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the saved weights against every row of --seasons",
	Args:  cobra.NoArgs,
	RunE:  runEvaluate,
}

// projectCmd recomputes the combined projections table
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Recompute the combined projections table",
	Long: `Loads --seasons, predicts every target with the saved weights and
writes the combined projections table to COMBINED_DATA_FRAME_PATH (or --out).

With --store the table also replaces the MongoDB copy, which running servers
with DB_WATCH_CHANGES pick up.`,
	Args: cobra.NoArgs,
	RunE: runProject,
}

func init() {
	for _, c := range []*cobra.Command{featuresCmd, trainCmd, evaluateCmd} {
		c.Flags().StringVar(&fromSnapshot, "from-snapshot", "", "read player/team weeks from a parquet snapshot directory instead of downloading")
	}
	featuresCmd.Flags().StringVarP(&featuresOut, "out", "o", "features", "output directory")
	trainCmd.Flags().IntVar(&holdout, "holdout", 0, "season excluded from training (default HOLDOUT_SEASON)")
	trainCmd.Flags().BoolVar(&recordRuns, "record", false, "store the run in MongoDB")
	projectCmd.Flags().StringVarP(&projectOut, "out", "o", "", "CSV output path (default COMBINED_DATA_FRAME_PATH)")
	projectCmd.Flags().BoolVar(&projectStore, "store", false, "also replace the projections stored in MongoDB")
}

// loadInputs reads the weekly tables either from a snapshot or nflverse.
// Snapshots carry no injury or depth chart data.
func loadInputs(ctx context.Context, years services.Years) (pipeline.Inputs, error) {
	if fromSnapshot == "" {
		return newNflverse().PipelineInputs(ctx, years)
	}
	players, err := services.ReadPlayerWeeksSnapshot(filepath.Join(fromSnapshot, "player_weeks.parquet"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	teams, err := services.ReadTeamWeeksSnapshot(filepath.Join(fromSnapshot, "team_weeks.parquet"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	return pipeline.Inputs{Players: players, Teams: teams}, nil
}

func buildFeatures(ctx context.Context) (*pipeline.Result, error) {
	years, err := selectedYears()
	if err != nil {
		return nil, err
	}
	in, err := loadInputs(ctx, years)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(in, pipeline.Options{RollingPeriod: cfg.Pipeline.RollingPeriod})
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	res, err := buildFeatures(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(featuresOut, 0o755); err != nil {
		return err
	}

	codes := append(models.TargetCodes(), models.DefenseTargetCode)
	for _, code := range codes {
		table, ok := res.Tables[code]
		if !ok {
			continue
		}
		target, _ := models.TargetByCode(code)
		features := res.InputColumns[code]
		if code != models.DefenseTargetCode {
			features = modeling.FeatureColumns(res, code)
		}
		m := pipeline.BuildMatrix(table, features, target.Stat)
		path := filepath.Join(featuresOut, code+".parquet")
		if err := pipeline.WriteMatrixFile(path, m); err != nil {
			return err
		}
		printf(cmd, "%-10s %6d rows %3d features -> %s\n", code, len(m.Rows), len(m.FeatureNames), path)
	}
	return nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if holdout == 0 {
		holdout = cfg.Pipeline.HoldoutSeason
	}
	res, err := buildFeatures(ctx)
	if err != nil {
		return err
	}
	results, err := modeling.TrainAndValidate(res, holdout)
	if err != nil {
		return err
	}

	metrics := make(map[string]models.TrainingMetrics, len(results))
	for code, r := range results {
		metrics[code] = r.Metrics
	}
	if err := writeMetrics(cmd.OutOrStdout(), "validation", metrics); err != nil {
		return err
	}

	store := modeling.NewFileWeightsStore(cfg.Pipeline.SavedWeightsPath)
	if err := modeling.SaveModels(store, results); err != nil {
		return err
	}
	printf(cmd, "Saved weights to %s\n", cfg.Pipeline.SavedWeightsPath)

	if !recordRuns {
		return nil
	}
	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	defer db.Close()

	runID, err := modeling.RecordRuns(ctx, database.NewMongoTrainingRunRepository(db), results, holdout)
	if err != nil {
		return err
	}
	printf(cmd, "Recorded training run %s\n", runID)
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	res, err := buildFeatures(ctx)
	if err != nil {
		return err
	}
	tested, err := modeling.TestModel(res, modeling.NewFileWeightsStore(cfg.Pipeline.SavedWeightsPath))
	if err != nil {
		return err
	}
	metrics := make(map[string]models.TrainingMetrics, len(tested))
	for code, r := range tested {
		metrics[code] = r.Metrics
	}
	return writeMetrics(cmd.OutOrStdout(), "test", metrics)
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	years, err := selectedYears()
	if err != nil {
		return err
	}
	scoring, err := cfg.ScoringWeights()
	if err != nil {
		return err
	}
	out := projectOut
	if out == "" {
		out = cfg.Pipeline.CombinedDataFramePath
	}

	var store services.ProjectionStore
	if projectStore {
		db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
		if err != nil {
			return fmt.Errorf("storing projections: %w", err)
		}
		defer db.Close()
		store = database.NewMongoProjectionRepository(db)
	}

	svc := services.NewProjectionService(services.ProjectionServiceConfig{
		CSVPath:       out,
		Seasons:       years,
		RollingPeriod: cfg.Pipeline.RollingPeriod,
		Scoring:       scoring,
	}, newNflverse(), modeling.NewFileWeightsStore(cfg.Pipeline.SavedWeightsPath), store)

	rows, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	logging.Infof("Projections for seasons %v written", []int(years))
	printf(cmd, "Wrote %d projection rows to %s\n", len(rows), out)
	return nil
}

// writeMetrics prints one line per target in catalog order.
func writeMetrics(w io.Writer, label string, metrics map[string]models.TrainingMetrics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TARGET\t%s RMSE\tR2\tN\n", label)
	for _, code := range models.TargetCodes() {
		m, ok := metrics[code]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.3f\t%d\n", code, m.RMSE, m.R2, m.N)
	}
	return tw.Flush()
}
