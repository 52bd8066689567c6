package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"nfl-projections-go/logging"
	"nfl-projections-go/modeling"
	"nfl-projections-go/models"
	"nfl-projections-go/pipeline"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/singleflight"
)

// AssembleCombined joins every target's truths, projections and display
// averages into one row per player-week. Missing metrics become 0, rows are
// ordered by (player_id, season, week) and the first row wins when a display
// name repeats within a week. Fantasy points are filled from w.
func AssembleCombined(res *pipeline.Result, tested map[string]*modeling.TestResult, w models.ScoringWeights) ([]models.ProjectionRow, error) {
	byKey := make(map[pipeline.Key]*models.ProjectionRow)
	var keys []pipeline.Key

	for _, target := range models.Targets {
		table, ok := res.Tables[target.Code]
		if !ok {
			continue
		}
		tr, ok := tested[target.Code]
		if !ok {
			return nil, fmt.Errorf("%w: no predictions for %s", models.ErrMissingProjection, target.Code)
		}
		if len(tr.Predictions) != table.Len() {
			return nil, fmt.Errorf("%s: %d predictions for %d rows", target.Code, len(tr.Predictions), table.Len())
		}

		for i, r := range table.Rows {
			k := r.Key()
			row, seen := byKey[k]
			if !seen {
				row = &models.ProjectionRow{
					PlayerID:          r.PlayerID,
					Season:            r.Season,
					Week:              r.Week,
					PlayerDisplayName: r.DisplayName,
					Position:          r.Position,
				}
				byKey[k] = row
				keys = append(keys, k)
			}
			values := map[string]float64{
				models.MetricTrue:      r.Get(target.Stat),
				models.MetricProjected: tr.Predictions[i],
				models.MetricAverage:   r.Get(pipeline.DisplayAvgColumn(target.Stat)),
				models.MetricSTD:       r.Get(pipeline.DisplayStdColumn(target.Stat)),
			}
			for metric, v := range values {
				if math.IsNaN(v) {
					v = 0
				}
				if err := row.SetMetric(models.ColumnName(metric, target.Stat), v); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Week < b.Week
	})

	type nameWeek struct {
		season, week int
		name         string
	}
	seen := make(map[nameWeek]bool, len(keys))
	out := make([]models.ProjectionRow, 0, len(keys))
	for _, k := range keys {
		row := byKey[k]
		nw := nameWeek{row.Season, row.Week, row.PlayerDisplayName}
		if seen[nw] {
			continue
		}
		seen[nw] = true
		if err := row.ApplyPoints(w); err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, nil
}

// WriteProjectionsCSV writes rows to path, creating parent directories.
func WriteProjectionsCSV(path string, rows []models.ProjectionRow) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadProjectionsCSV reads a file written by WriteProjectionsCSV.
func ReadProjectionsCSV(path string) ([]models.ProjectionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []models.ProjectionRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// ProjectionStore persists the combined table outside the CSV file.
type ProjectionStore interface {
	ReplaceAll(ctx context.Context, rows []models.ProjectionRow) error
	FindAll(ctx context.Context) ([]models.ProjectionRow, error)
}

// InputLoader supplies the weekly tables of the given seasons.
type InputLoader interface {
	PipelineInputs(ctx context.Context, years Years) (pipeline.Inputs, error)
}

// RefreshEvent describes a finished refresh.
type RefreshEvent struct {
	Rows     int           `json:"rows"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration_ns"`
	At       time.Time     `json:"at"`
	Error    string        `json:"error,omitempty"`
}

// Where a loaded table came from.
const (
	SourceMemory    = "memory"
	SourceCSV       = "csv"
	SourceStore     = "store"
	SourceRecompute = "recompute"
)

// ProjectionServiceConfig configures ProjectionService.
type ProjectionServiceConfig struct {
	CSVPath       string
	Seasons       []int
	RollingPeriod int
	Scoring       models.ScoringWeights
}

// ProjectionService owns the combined projections table shown by the
// dashboard.
type ProjectionService struct {
	cfg     ProjectionServiceConfig
	loader  InputLoader
	weights modeling.WeightsStore
	store   ProjectionStore
	logger  *logging.Logger

	refreshMu sync.Mutex
	loads     singleflight.Group

	mu        sync.RWMutex
	rows      []models.ProjectionRow
	loadedAt  time.Time
	source    string
	storedAt  time.Time
	listeners []func(RefreshEvent)
}

// storeEchoWindow is how long after its own store write the service ignores
// store change notifications.
const storeEchoWindow = 30 * time.Second

// NewProjectionService builds the service. store may be nil.
func NewProjectionService(cfg ProjectionServiceConfig, loader InputLoader, weights modeling.WeightsStore, store ProjectionStore) *ProjectionService {
	if cfg.Scoring == nil {
		cfg.Scoring = models.DefaultScoringWeights()
	}
	return &ProjectionService{
		cfg:     cfg,
		loader:  loader,
		weights: weights,
		store:   store,
		logger:  logging.WithPrefix("ProjectionService"),
	}
}

// OnRefresh registers a callback run after every refresh.
func (s *ProjectionService) OnRefresh(fn func(RefreshEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Rows returns the loaded table, nil before the first Load.
func (s *ProjectionService) Rows() []models.ProjectionRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Status reports where the table came from and when.
func (s *ProjectionService) Status() (source string, loadedAt time.Time, rows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.loadedAt, len(s.rows)
}

func (s *ProjectionService) set(rows []models.ProjectionRow, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.source = source
	s.loadedAt = time.Now()
}

// Load returns the table from memory, else the CSV file, else the store,
// else by recomputing it. Concurrent callers on an empty service share one
// load.
func (s *ProjectionService) Load(ctx context.Context) ([]models.ProjectionRow, error) {
	if rows := s.Rows(); rows != nil {
		return rows, nil
	}
	v, err, _ := s.loads.Do("load", func() (any, error) {
		if rows := s.Rows(); rows != nil {
			return rows, nil
		}
		return s.loadCold(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ProjectionRow), nil
}

func (s *ProjectionService) loadCold(ctx context.Context) ([]models.ProjectionRow, error) {
	if s.cfg.CSVPath != "" {
		rows, err := ReadProjectionsCSV(s.cfg.CSVPath)
		switch {
		case err == nil:
			s.logger.Infof("Loaded %d projections from %s", len(rows), s.cfg.CSVPath)
			s.set(rows, SourceCSV)
			return rows, nil
		case !errors.Is(err, os.ErrNotExist):
			s.logger.Warnf("Ignoring unreadable %s: %v", s.cfg.CSVPath, err)
		}
	}

	if s.store != nil {
		rows, err := s.store.FindAll(ctx)
		if err != nil {
			s.logger.Warnf("Projection store unavailable: %v", err)
		} else if len(rows) > 0 {
			s.logger.Infof("Loaded %d projections from store", len(rows))
			s.set(rows, SourceStore)
			return rows, nil
		}
	}

	return s.recompute(ctx, false)
}

// Refresh recomputes the table from fresh inputs, saves it and notifies
// listeners. Concurrent calls run one at a time.
func (s *ProjectionService) Refresh(ctx context.Context) ([]models.ProjectionRow, error) {
	return s.recompute(ctx, true)
}

// recompute runs under refreshMu. Without force it returns the rows a
// refresh finished while it waited for the lock.
func (s *ProjectionService) recompute(ctx context.Context, force bool) ([]models.ProjectionRow, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if rows := s.Rows(); !force && rows != nil {
		return rows, nil
	}

	start := time.Now()
	rows, err := s.compute(ctx)
	ev := RefreshEvent{Source: SourceRecompute, Duration: time.Since(start), At: time.Now()}
	if err != nil {
		ev.Error = err.Error()
		s.notify(ev)
		return nil, err
	}
	ev.Rows = len(rows)

	if s.cfg.CSVPath != "" {
		if err := WriteProjectionsCSV(s.cfg.CSVPath, rows); err != nil {
			s.logger.Warnf("Could not save %s: %v", s.cfg.CSVPath, err)
		}
	}
	if s.store != nil {
		if err := s.store.ReplaceAll(ctx, rows); err != nil {
			s.logger.Warnf("Could not save projections to store: %v", err)
		} else {
			s.mu.Lock()
			s.storedAt = time.Now()
			s.mu.Unlock()
		}
	}

	s.set(rows, SourceRecompute)
	s.logger.Infof("Recomputed %d projections in %v", len(rows), ev.Duration.Round(time.Millisecond))
	s.notify(ev)
	return rows, nil
}

// ReloadFromStore replaces the table with the stored copy and notifies
// listeners. It is a no-op right after this service wrote the store itself.
func (s *ProjectionService) ReloadFromStore(ctx context.Context) error {
	if s.store == nil {
		return errors.New("projection service has no store")
	}
	s.mu.RLock()
	stored := s.storedAt
	s.mu.RUnlock()
	if time.Since(stored) < storeEchoWindow {
		s.logger.Debugf("Ignoring store change written by this service")
		return nil
	}

	start := time.Now()
	rows, err := s.store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("reloading projections: %w", err)
	}
	s.set(rows, SourceStore)
	s.logger.Infof("Reloaded %d projections from store", len(rows))
	s.notify(RefreshEvent{Rows: len(rows), Source: SourceStore, Duration: time.Since(start), At: time.Now()})
	return nil
}

func (s *ProjectionService) compute(ctx context.Context) ([]models.ProjectionRow, error) {
	if s.loader == nil || s.weights == nil {
		return nil, errors.New("projection service has no input loader or weights store")
	}
	in, err := s.loader.PipelineInputs(ctx, Years(s.cfg.Seasons))
	if err != nil {
		return nil, fmt.Errorf("loading inputs: %w", err)
	}
	res, err := pipeline.Run(in, pipeline.Options{RollingPeriod: s.cfg.RollingPeriod})
	if err != nil {
		return nil, err
	}
	tested, err := modeling.TestModel(res, s.weights)
	if err != nil {
		return nil, fmt.Errorf("applying saved models: %w", err)
	}
	return AssembleCombined(res, tested, s.cfg.Scoring)
}

func (s *ProjectionService) notify(ev RefreshEvent) {
	s.mu.RLock()
	listeners := append([]func(RefreshEvent){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
