package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nfl-projections-go/middleware"
	"nfl-projections-go/models"
	"nfl-projections-go/services"
	"nfl-projections-go/templates"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProjections struct {
	mu        sync.Mutex
	rows      []models.ProjectionRow
	loadErr   error
	refreshes atomic.Int32
	block     chan struct{}
}

func (f *fakeProjections) Rows() []models.ProjectionRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows
}

func (f *fakeProjections) Status() (string, time.Time, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return services.SourceCSV, time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC), len(f.rows)
}

func (f *fakeProjections) Load(context.Context) ([]models.ProjectionRow, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = sampleRows()
	return f.rows, nil
}

func (f *fakeProjections) Refresh(ctx context.Context) ([]models.ProjectionRow, error) {
	f.refreshes.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.Rows(), nil
}

const adminPassword = "let me in please"

func newTestRouter(t *testing.T, p *fakeProjections) (*mux.Router, *APIHandler) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth := services.NewAuthService(string(hash), "handler-secret", time.Hour)

	tmpl, err := templates.Parse("../templates")
	require.NoError(t, err)

	api := NewAPIHandler(p, time.Minute)
	r := NewRouter(RouterDeps{
		Dashboard: NewDashboardHandler(tmpl, p),
		API:       api,
		Auth:      NewAuthHandler(auth, false),
		SSE:       NewSSEHandler(0),
		AuthMW:    middleware.NewAuthMiddleware(auth),
	})
	return r, api
}

func TestProjectionsAPI(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProjections{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projections?week=1&sort_by=True+rushing_yards", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body projectionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.SourceCSV, body.Source)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, []string{"rb1", "qb1"}, ids(body.Rows))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projections?week=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":4`)
}

func TestProjectionsUnavailable(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProjections{loadErr: errors.New("no weights")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projections", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"password":"`+adminPassword+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	t.Fatal("no auth cookie set")
	return nil
}

func TestLogin(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProjections{})

	cookie := login(t, r)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(url.Values{"password": {"nope"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	disabled := NewAuthHandler(services.NewAuthService("", "s", 0), false)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(url.Values{"password": {"x"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	disabled.Login(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshRequiresAdmin(t *testing.T) {
	p := &fakeProjections{rows: sampleRows(), block: make(chan struct{})}
	r, api := newTestRouter(t, p)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/projections/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.EqualValues(t, 0, p.refreshes.Load())

	cookie := login(t, r)
	refresh := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/projections/refresh", nil)
		req.AddCookie(cookie)
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusAccepted, refresh())
	assert.Equal(t, http.StatusConflict, refresh())

	close(p.block)
	api.Wait()
	assert.EqualValues(t, 1, p.refreshes.Load())
	assert.Equal(t, http.StatusAccepted, refresh())
	api.Wait()
	assert.EqualValues(t, 2, p.refreshes.Load())
}

func TestDashboardPages(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProjections{rows: sampleRows()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, NoSelectionHint)
	assert.NotContains(t, body, "Recompute projections")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/table?week=1&position=QB&position=RB", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Derrick Henry")
	assert.Contains(t, body, "Patrick Mahomes")
	assert.NotContains(t, body, "Saquon Barkley")
	assert.Contains(t, body, "background-color: #006837")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(login(t, r))
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Recompute projections")
}

func TestSSEBroadcastsRefresh(t *testing.T) {
	h := NewSSEHandler(0)
	defer h.Stop()
	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connection\n", line)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	h.BroadcastRefresh(services.RefreshEvent{Rows: 3, Source: services.SourceRecompute})

	var event, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: ") && event == EventRefresh:
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	var ev services.RefreshEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, 3, ev.Rows)
	assert.Equal(t, services.SourceRecompute, ev.Source)

	cancel()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
