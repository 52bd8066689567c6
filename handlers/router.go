package handlers

import (
	"net/http"

	"nfl-projections-go/middleware"

	"github.com/gorilla/mux"
)

// RouterDeps are the handlers mounted by NewRouter
type RouterDeps struct {
	Dashboard *DashboardHandler
	API       *APIHandler
	Auth      *AuthHandler
	SSE       *SSEHandler
	AuthMW    *middleware.AuthMiddleware
}

// NewRouter wires every route. All routes get request logging and security
// headers; the refresh endpoint requires an admin token.
func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger, middleware.SecurityMiddleware)

	// Dashboard routes
	r.Handle("/", d.AuthMW.OptionalAuth(http.HandlerFunc(d.Dashboard.Dashboard))).Methods(http.MethodGet)
	r.Handle("/dashboard/table", d.AuthMW.OptionalAuth(http.HandlerFunc(d.Dashboard.Table))).Methods(http.MethodGet)
	r.HandleFunc("/events", d.SSE.Handle).Methods(http.MethodGet)

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/projections", d.API.Projections).Methods(http.MethodGet)
	api.HandleFunc("/status", d.API.Status).Methods(http.MethodGet)
	api.HandleFunc("/login", d.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", d.Auth.Logout).Methods(http.MethodPost)
	api.Handle("/projections/refresh", d.AuthMW.RequireAdmin(http.HandlerFunc(d.API.Refresh))).Methods(http.MethodPost)

	return r
}
