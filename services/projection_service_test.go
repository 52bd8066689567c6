package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nfl-projections-go/modeling"
	"nfl-projections-go/models"
	"nfl-projections-go/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	in    pipeline.Inputs
	calls int
	years Years
}

func (l *staticLoader) PipelineInputs(_ context.Context, years Years) (pipeline.Inputs, error) {
	l.calls++
	l.years = years
	return l.in, nil
}

// slowLoader counts calls and takes delay to answer.
type slowLoader struct {
	in    pipeline.Inputs
	delay time.Duration
	calls atomic.Int32
}

func (l *slowLoader) PipelineInputs(ctx context.Context, _ Years) (pipeline.Inputs, error) {
	l.calls.Add(1)
	select {
	case <-time.After(l.delay):
		return l.in, nil
	case <-ctx.Done():
		return pipeline.Inputs{}, ctx.Err()
	}
}

// interceptOnly predicts a constant for every target.
type interceptOnly float64

func (c interceptOnly) Save(models.ModelWeights) error { return nil }

func (c interceptOnly) Load(target string) (models.ModelWeights, error) {
	return models.ModelWeights{Target: target, Intercept: float64(c)}, nil
}

type memoryStore struct {
	mu   sync.Mutex
	rows []models.ProjectionRow
	err  error
}

func (m *memoryStore) ReplaceAll(_ context.Context, rows []models.ProjectionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
	return nil
}

func (m *memoryStore) FindAll(context.Context) ([]models.ProjectionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows, m.err
}

func week(id, name, pos string, w int, stats map[string]float64) models.PlayerWeek {
	return models.PlayerWeek{
		PlayerID: id, PlayerDisplayName: name, Position: pos,
		Team: "KC", OpponentTeam: "DEN", Season: 2024, Week: w, Stats: stats,
	}
}

func projectionInputs() pipeline.Inputs {
	return pipeline.Inputs{
		Players: []models.PlayerWeek{
			week("rb1", "Run Back", "RB", 1, map[string]float64{"rushing_yards": 50, "carries": 10, "receptions": 2, "receiving_yards": 20, "targets": 3}),
			week("rb1", "Run Back", "RB", 2, map[string]float64{"rushing_yards": 70, "carries": 12, "receptions": 1, "receiving_yards": 5, "targets": 1}),
			week("qb1", "Quarter Back", "QB", 1, map[string]float64{"passing_yards": 250, "passing_tds": 2, "attempts": 30, "completions": 20}),
			week("qb1", "Quarter Back", "QB", 2, map[string]float64{"passing_yards": 300, "passing_tds": 1, "attempts": 35, "completions": 25}),
		},
	}
}

func TestAssembleCombined(t *testing.T) {
	res, err := pipeline.Run(projectionInputs(), pipeline.Options{})
	require.NoError(t, err)
	tested, err := modeling.TestModel(res, interceptOnly(10))
	require.NoError(t, err)

	rows, err := AssembleCombined(res, tested, models.DefaultScoringWeights())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "qb1", rows[0].PlayerID)
	assert.Equal(t, 1, rows[0].Week)
	assert.Equal(t, "QB", rows[0].Position)
	assert.Equal(t, 250.0, rows[0].TruePassingYards)
	assert.Equal(t, 10.0, rows[0].ProjectedPassingYards)
	assert.Equal(t, 0.0, rows[0].AveragePassingYards)
	assert.Equal(t, 250.0, rows[1].AveragePassingYards)

	rb1 := rows[2]
	assert.Equal(t, "Run Back", rb1.PlayerDisplayName)
	assert.Equal(t, 50.0, rb1.TrueRushingYards)
	assert.Equal(t, 0.0, rb1.TruePassingYards)
	assert.InDelta(t, 8.0, rb1.TruePoints, 1e-9)
	assert.InDelta(t, 87.0, rb1.ProjectedPoints, 1e-9)

	rb2 := rows[3]
	assert.Equal(t, 50.0, rb2.AverageRushingYards)
	assert.Equal(t, 0.0, rb2.STDRushingYards)

	delete(tested, "rc")
	_, err = AssembleCombined(res, tested, models.DefaultScoringWeights())
	assert.ErrorIs(t, err, models.ErrMissingProjection)
}

func TestAssembleCombinedDropsRepeatedNames(t *testing.T) {
	in := projectionInputs()
	in.Players = append(in.Players, week("rb9", "Run Back", "RB", 1, map[string]float64{"rushing_yards": 1}))
	res, err := pipeline.Run(in, pipeline.Options{})
	require.NoError(t, err)
	tested, err := modeling.TestModel(res, interceptOnly(0))
	require.NoError(t, err)

	rows, err := AssembleCombined(res, tested, models.DefaultScoringWeights())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.NotEqual(t, "rb9", r.PlayerID)
	}
}

func TestProjectionServiceLoadOrder(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "data", "combined.csv")
	loader := &staticLoader{in: projectionInputs()}
	store := &memoryStore{}
	svc := NewProjectionService(ProjectionServiceConfig{CSVPath: csvPath, Seasons: []int{2024}}, loader, interceptOnly(10), store)

	var events []RefreshEvent
	svc.OnRefresh(func(ev RefreshEvent) { events = append(events, ev) })

	rows, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, Years{2024}, loader.years)
	assert.Len(t, store.rows, 4)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Rows)
	source, _, n := svc.Status()
	assert.Equal(t, SourceRecompute, source)
	assert.Equal(t, 4, n)

	// A fresh service reads the CSV written above.
	fromCSV := NewProjectionService(ProjectionServiceConfig{CSVPath: csvPath}, loader, interceptOnly(10), nil)
	rows, err = fromCSV.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, 1, loader.calls)
	source, _, _ = fromCSV.Status()
	assert.Equal(t, SourceCSV, source)
	assert.Equal(t, "Quarter Back", rows[0].PlayerDisplayName)
	assert.InDelta(t, 87.0, rows[2].ProjectedPoints, 1e-9)

	// Without a CSV the store wins.
	fromStore := NewProjectionService(ProjectionServiceConfig{CSVPath: filepath.Join(t.TempDir(), "none.csv")}, loader, interceptOnly(10), store)
	_, err = fromStore.Load(context.Background())
	require.NoError(t, err)
	source, _, _ = fromStore.Status()
	assert.Equal(t, SourceStore, source)
	assert.Equal(t, 1, loader.calls)
}

func TestProjectionServiceConcurrentLoadsShareOneRecompute(t *testing.T) {
	loader := &slowLoader{in: projectionInputs(), delay: 50 * time.Millisecond}
	svc := NewProjectionService(ProjectionServiceConfig{Seasons: []int{2024}}, loader, interceptOnly(10), nil)

	var refreshes atomic.Int32
	svc.OnRefresh(func(RefreshEvent) { refreshes.Add(1) })

	var wg sync.WaitGroup
	results := make([][]models.ProjectionRow, 5)
	errs := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Load(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 4)
	}
	assert.EqualValues(t, 1, loader.calls.Load())
	assert.EqualValues(t, 1, refreshes.Load())

	// An explicit refresh still recomputes.
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestProjectionServiceLoadWaitsForRunningRefresh(t *testing.T) {
	loader := &slowLoader{in: projectionInputs(), delay: 50 * time.Millisecond}
	svc := NewProjectionService(ProjectionServiceConfig{Seasons: []int{2024}}, loader, interceptOnly(10), nil)

	refreshed := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		refreshed <- err
	}()
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)

	rows, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	require.NoError(t, <-refreshed)
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestProjectionServiceRefreshFailure(t *testing.T) {
	svc := NewProjectionService(ProjectionServiceConfig{}, &staticLoader{in: projectionInputs()}, modeling.NewFileWeightsStore(t.TempDir()), &memoryStore{err: errors.New("offline")})

	var events []RefreshEvent
	svc.OnRefresh(func(ev RefreshEvent) { events = append(events, ev) })

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, modeling.ErrNoWeights)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].Error)
	assert.Nil(t, svc.Rows())
}

func TestProjectionServiceReloadFromStore(t *testing.T) {
	loader := &staticLoader{in: projectionInputs()}
	store := &memoryStore{}
	svc := NewProjectionService(ProjectionServiceConfig{}, loader, interceptOnly(10), store)

	var events []RefreshEvent
	svc.OnRefresh(func(ev RefreshEvent) { events = append(events, ev) })

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	// The service's own write is not reloaded.
	require.NoError(t, svc.ReloadFromStore(context.Background()))
	assert.Len(t, events, 1)

	noStore := NewProjectionService(ProjectionServiceConfig{}, loader, interceptOnly(10), nil)
	assert.Error(t, noStore.ReloadFromStore(context.Background()))

	// Another writer replaced the table.
	require.NoError(t, store.ReplaceAll(context.Background(), store.rows[:2]))

	watcher := NewProjectionService(ProjectionServiceConfig{}, loader, interceptOnly(10), store)
	var reloaded []RefreshEvent
	watcher.OnRefresh(func(ev RefreshEvent) { reloaded = append(reloaded, ev) })
	require.NoError(t, watcher.ReloadFromStore(context.Background()))
	require.Len(t, reloaded, 1)
	assert.Equal(t, SourceStore, reloaded[0].Source)
	assert.Equal(t, 2, reloaded[0].Rows)
	assert.Len(t, watcher.Rows(), 2)
}
