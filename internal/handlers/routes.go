package handlers

import (
	"net/http"

	"github.com/gearguard/gearguard/internal/auth"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/events"
	"github.com/gearguard/gearguard/internal/middleware"
	"github.com/gearguard/gearguard/internal/models"
)

// NewRouter wires every handler onto a ServeMux and wraps it with the
// authentication middleware.
func NewRouter(authService *auth.Service, collections *db.Collections, publisher events.Publisher) http.Handler {
	authHandler := NewAuthHandler(authService, collections.Users)
	requestHandler := NewRequestHandler(collections, publisher)
	dashboardHandler := NewDashboardHandler(collections)
	calendarHandler := NewCalendarHandler(collections)
	assetHandler := NewAssetHandler(collections)
	teamHandler := NewTeamHandler(collections)
	userHandler := NewUserHandler(collections.Users)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	managerOnly := authMiddleware.RequireRole(models.RoleManager)
	staff := authMiddleware.RequireRole(models.RoleTechnician, models.RoleManager)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/demo-login", authHandler.DemoLogin)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	mux.HandleFunc("GET /api/maintenance-requests/stats", requestHandler.Stats)
	mux.HandleFunc("GET /api/maintenance-requests", requestHandler.List)
	mux.HandleFunc("POST /api/maintenance-requests", requestHandler.Create)
	mux.HandleFunc("GET /api/maintenance-requests/{id}", requestHandler.GetByID)
	mux.HandleFunc("PUT /api/maintenance-requests/{id}", requestHandler.Update)
	mux.HandleFunc("DELETE /api/maintenance-requests/{id}", requestHandler.Delete)
	mux.HandleFunc("POST /api/maintenance-requests/{id}/comments", requestHandler.AddComment)

	mux.HandleFunc("GET /api/dashboard/analytics", dashboardHandler.Analytics)
	mux.HandleFunc("GET /api/dashboard/kpis", dashboardHandler.KPIs)
	mux.HandleFunc("GET /api/dashboard/trends", dashboardHandler.Trends)

	mux.HandleFunc("GET /api/calendar/events", calendarHandler.Events)
	mux.HandleFunc("GET /api/calendar/deadlines", calendarHandler.Deadlines)
	mux.HandleFunc("GET /api/calendar/stats", calendarHandler.Stats)
	mux.HandleFunc("GET /api/calendar/team/{teamId}", calendarHandler.TeamSchedule)
	mux.Handle("POST /api/calendar/schedule/{requestId}", staff(http.HandlerFunc(calendarHandler.Schedule)))

	mux.HandleFunc("GET /api/assets", assetHandler.List)
	mux.HandleFunc("GET /api/assets/stats", assetHandler.Stats)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.GetByID)
	mux.Handle("POST /api/assets", managerOnly(http.HandlerFunc(assetHandler.Create)))
	mux.Handle("PUT /api/assets/{id}", managerOnly(http.HandlerFunc(assetHandler.Update)))
	mux.Handle("DELETE /api/assets/{id}", managerOnly(http.HandlerFunc(assetHandler.Delete)))

	mux.HandleFunc("GET /api/teams", teamHandler.List)
	mux.HandleFunc("GET /api/teams/{id}", teamHandler.GetByID)
	mux.Handle("POST /api/teams", managerOnly(http.HandlerFunc(teamHandler.Create)))
	mux.Handle("PUT /api/teams/{id}", managerOnly(http.HandlerFunc(teamHandler.Update)))
	mux.Handle("DELETE /api/teams/{id}", managerOnly(http.HandlerFunc(teamHandler.Delete)))

	mux.Handle("GET /api/users", managerOnly(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /api/users/{id}", managerOnly(http.HandlerFunc(userHandler.GetByID)))
	mux.Handle("PUT /api/users/{id}", managerOnly(http.HandlerFunc(userHandler.Update)))

	return authMiddleware.Authenticate(mux)
}
