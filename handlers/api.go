package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nfl-projections-go/interfaces"
	"nfl-projections-go/logging"
	"nfl-projections-go/models"
)

// APIHandler serves the projections table as JSON and runs admin refreshes
type APIHandler struct {
	projections    interfaces.ProjectionProvider
	refreshTimeout time.Duration
	refreshing     atomic.Bool
	wg             sync.WaitGroup
	logger         *logging.Logger
}

// NewAPIHandler creates the JSON API handler
func NewAPIHandler(projections interfaces.ProjectionProvider, refreshTimeout time.Duration) *APIHandler {
	if refreshTimeout <= 0 {
		refreshTimeout = 30 * time.Minute
	}
	return &APIHandler{
		projections:    projections,
		refreshTimeout: refreshTimeout,
		logger:         logging.WithPrefix("API"),
	}
}

type projectionsResponse struct {
	Source   string                 `json:"source"`
	LoadedAt time.Time              `json:"loaded_at"`
	Total    int                    `json:"total"`
	Rows     []models.ProjectionRow `json:"rows"`
}

// Projections handles GET /api/projections with the dashboard filters.
// Unlike the HTML view, empty week or position filters return every row.
func (h *APIHandler) Projections(w http.ResponseWriter, r *http.Request) {
	q, err := ParseDashboardQuery(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := loadRows(r.Context(), h.projections)
	if err != nil {
		h.logger.Errorf("Loading projections: %v", err)
		writeJSONError(w, http.StatusServiceUnavailable, "projections unavailable")
		return
	}

	shown := FilterProjections(rows, q)
	source, loadedAt, _ := h.projections.Status()
	writeJSON(w, http.StatusOK, projectionsResponse{
		Source:   source,
		LoadedAt: loadedAt,
		Total:    len(shown),
		Rows:     shown,
	})
}

type statusResponse struct {
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Rows       int       `json:"rows"`
	Refreshing bool      `json:"refreshing"`
}

// Status handles GET /api/status
func (h *APIHandler) Status(w http.ResponseWriter, r *http.Request) {
	source, loadedAt, n := h.projections.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Source:     source,
		LoadedAt:   loadedAt,
		Rows:       n,
		Refreshing: h.refreshing.Load(),
	})
}

// Refresh handles POST /api/projections/refresh. The recompute runs in the
// background; completion is announced over SSE. A second request while one
// is running gets 409.
func (h *APIHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.refreshing.CompareAndSwap(false, true) {
		writeJSONError(w, http.StatusConflict, "refresh already running")
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.refreshing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), h.refreshTimeout)
		defer cancel()
		if _, err := h.projections.Refresh(ctx); err != nil {
			h.logger.Errorf("Admin refresh failed: %v", err)
			return
		}
		h.logger.Info("Admin refresh finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// Wait blocks until background refreshes started by Refresh return.
func (h *APIHandler) Wait() {
	h.wg.Wait()
}

func loadRows(ctx context.Context, p interfaces.ProjectionProvider) ([]models.ProjectionRow, error) {
	if rows := p.Rows(); rows != nil {
		return rows, nil
	}
	return p.Load(ctx)
}
