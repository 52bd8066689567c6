package handlers

import (
	"html/template"
	"net/http"
	"time"

	"nfl-projections-go/interfaces"
	"nfl-projections-go/logging"
	"nfl-projections-go/middleware"
)

// DashboardHandler renders the projections dashboard
type DashboardHandler struct {
	templates   *template.Template
	projections interfaces.ProjectionProvider
	logger      *logging.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(templates *template.Template, projections interfaces.ProjectionProvider) *DashboardHandler {
	return &DashboardHandler{
		templates:   templates,
		projections: projections,
		logger:      logging.WithPrefix("Dashboard"),
	}
}

type dashboardPage struct {
	Title   string
	IsAdmin bool
	View    DashboardView
}

// Dashboard handles GET / with the full page
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard.html")
}

// Table handles GET /dashboard/table with only the table fragment, for
// htmx swaps when a filter changes
func (h *DashboardHandler) Table(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard-table")
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, name string) {
	q, err := ParseDashboardQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := loadRows(r.Context(), h.projections)
	if err != nil {
		h.logger.Errorf("Loading projections: %v", err)
		http.Error(w, "Projections are not available yet", http.StatusServiceUnavailable)
		return
	}

	view := BuildDashboardView(rows, q)
	source, loadedAt, _ := h.projections.Status()
	view.Source = source
	if !loadedAt.IsZero() {
		view.LoadedAt = loadedAt.Format(time.RFC1123)
	}

	data := dashboardPage{
		Title:   "NFL Weekly Player Stats with Projections",
		IsAdmin: middleware.IsAdmin(r),
		View:    view,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Errorf("Template error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
