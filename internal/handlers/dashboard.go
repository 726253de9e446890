package handlers

import (
	"net/http"
	"time"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
	"github.com/gearguard/gearguard/internal/stats"
)

// DashboardHandler serves the analytics, KPI and trend rollups.
type DashboardHandler struct {
	collections *db.Collections
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(collections *db.Collections) *DashboardHandler {
	return &DashboardHandler{collections: collections}
}

// AnalyticsResponse is the combined analytics payload.
type AnalyticsResponse struct {
	Stats           stats.Stats              `json:"stats"`
	Trends          stats.Trends             `json:"trends"`
	TeamPerformance []stats.TeamMetrics      `json:"teamPerformance"`
	AssetHealth     []stats.AssetHealthEntry `json:"assetHealth"`
	TotalRequests   int                      `json:"totalRequests"`
}

// Analytics handles GET /api/dashboard/analytics, with optional team and
// date-range filters for managers.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "analytics", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "analytics", apperr.Internalf(err, "failed to fetch analytics"))
		return
	}

	query := r.URL.Query()
	if teamID := query.Get("teamId"); teamID != "" && claims.Role == models.RoleManager {
		filtered := requests[:0:0]
		for _, req := range requests {
			if req.AssignedTeamID == teamID {
				filtered = append(filtered, req)
			}
		}
		requests = filtered
	}
	requests, err = filterByDateRange(requests, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeError(w, r, "analytics", err)
		return
	}

	teams, err := h.collections.Teams.FindTeams(r.Context(), nil)
	if err != nil {
		writeError(w, r, "analytics", apperr.Internalf(err, "failed to fetch analytics"))
		return
	}
	assets, err := h.collections.Assets.FindAssets(r.Context(), nil)
	if err != nil {
		writeError(w, r, "analytics", apperr.Internalf(err, "failed to fetch analytics"))
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, AnalyticsResponse{
		Stats:           stats.Compute(requests, now),
		Trends:          stats.ComputeTrends(requests, now),
		TeamPerformance: stats.TeamPerformance(requests, teams),
		AssetHealth:     stats.AssetHealth(requests, assets, now),
		TotalRequests:   len(requests),
	})
}

// KPIs handles GET /api/dashboard/kpis.
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "kpis", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "kpis", apperr.Internalf(err, "failed to fetch KPIs"))
		return
	}

	writeJSON(w, http.StatusOK, stats.ComputeKPIs(requests, time.Now()))
}

// Trends handles GET /api/dashboard/trends, grouped by request type.
func (h *DashboardHandler) Trends(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "trends", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "trends", apperr.Internalf(err, "failed to fetch trends"))
		return
	}

	writeJSON(w, http.StatusOK, stats.TrendsByCategory(requests))
}

// filterByDateRange narrows a snapshot to requests created inside the
// inclusive range. Empty bounds are open.
func filterByDateRange(requests []models.MaintenanceRequest, start, end string) ([]models.MaintenanceRequest, error) {
	if start == "" && end == "" {
		return requests, nil
	}

	var startTime, endTime time.Time
	var err error
	if start != "" {
		startTime, err = parseDate(start)
		if err != nil {
			return nil, apperr.Validationf("invalid startDate %q", start)
		}
	}
	if end != "" {
		endTime, err = parseDate(end)
		if err != nil {
			return nil, apperr.Validationf("invalid endDate %q", end)
		}
	}

	filtered := requests[:0:0]
	for _, req := range requests {
		if !startTime.IsZero() && req.CreatedAt.Before(startTime) {
			continue
		}
		if !endTime.IsZero() && req.CreatedAt.After(endTime) {
			continue
		}
		filtered = append(filtered, req)
	}
	return filtered, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
