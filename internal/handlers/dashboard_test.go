package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gearguard/gearguard/internal/models"
	"github.com/gearguard/gearguard/internal/stats"
)

func TestDashboardHandler_Analytics(t *testing.T) {
	t.Run("full payload for manager", func(t *testing.T) {
		tc, collections := newTestCollections()
		handler := NewDashboardHandler(collections)

		teamOID := primitive.NewObjectID()
		assetOID := primitive.NewObjectID()
		now := time.Now()
		done := now.Add(-time.Hour)

		requests := []models.MaintenanceRequest{
			{
				ID: primitive.NewObjectID(), Status: models.StatusCompleted, AssetID: assetOID.Hex(),
				AssignedTeamID: teamOID.Hex(), CreatedAt: now.Add(-72 * time.Hour), CompletedAt: &done,
			},
			{
				ID: primitive.NewObjectID(), Status: models.StatusPending, AssetID: assetOID.Hex(),
				CreatedAt: now.Add(-24 * time.Hour),
			},
		}
		teams := []models.Team{{ID: teamOID, Name: "Mechanical"}}
		assets := []models.Asset{{ID: assetOID, Name: "Hydraulic Press A"}}

		tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return(requests, nil)
		tc.teams.On("FindTeams", mock.Anything, bson.M(nil)).Return(teams, nil)
		tc.assets.On("FindAssets", mock.Anything, bson.M(nil)).Return(assets, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/dashboard/analytics", nil), managerClaims())
		w := httptest.NewRecorder()

		handler.Analytics(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response AnalyticsResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 2, response.TotalRequests)
		assert.Equal(t, 2, response.Stats.Total)
		assert.Equal(t, 50.0, response.Stats.CompletionRate)
		assert.Len(t, response.Trends.Monthly, 12)
		assert.Len(t, response.TeamPerformance, 1)
		assert.Equal(t, "Mechanical", response.TeamPerformance[0].TeamName)
		assert.Len(t, response.AssetHealth, 1)
	})

	t.Run("team filter narrows the snapshot", func(t *testing.T) {
		tc, collections := newTestCollections()
		handler := NewDashboardHandler(collections)

		teamID := primitive.NewObjectID().Hex()
		requests := []models.MaintenanceRequest{
			{ID: primitive.NewObjectID(), Status: models.StatusPending, AssignedTeamID: teamID, CreatedAt: time.Now()},
			{ID: primitive.NewObjectID(), Status: models.StatusPending, CreatedAt: time.Now()},
		}

		tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return(requests, nil)
		tc.teams.On("FindTeams", mock.Anything, bson.M(nil)).Return([]models.Team{}, nil)
		tc.assets.On("FindAssets", mock.Anything, bson.M(nil)).Return([]models.Asset{}, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/dashboard/analytics?teamId="+teamID, nil), managerClaims())
		w := httptest.NewRecorder()

		handler.Analytics(w, req)

		var response AnalyticsResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.TotalRequests)
	})

	t.Run("date range filter is inclusive", func(t *testing.T) {
		tc, collections := newTestCollections()
		handler := NewDashboardHandler(collections)

		requests := []models.MaintenanceRequest{
			{ID: primitive.NewObjectID(), Status: models.StatusPending, CreatedAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
			{ID: primitive.NewObjectID(), Status: models.StatusPending, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		}

		tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return(requests, nil)
		tc.teams.On("FindTeams", mock.Anything, bson.M(nil)).Return([]models.Team{}, nil)
		tc.assets.On("FindAssets", mock.Anything, bson.M(nil)).Return([]models.Asset{}, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/dashboard/analytics?startDate=2025-06-01&endDate=2025-06-30", nil), managerClaims())
		w := httptest.NewRecorder()

		handler.Analytics(w, req)

		var response AnalyticsResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.TotalRequests)
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		tc, collections := newTestCollections()
		handler := NewDashboardHandler(collections)

		tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return([]models.MaintenanceRequest{}, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/dashboard/analytics?startDate=notadate", nil), managerClaims())
		w := httptest.NewRecorder()

		handler.Analytics(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDashboardHandler_KPIs(t *testing.T) {
	tc, collections := newTestCollections()
	handler := NewDashboardHandler(collections)

	now := time.Now()
	done := now.Add(-time.Hour)
	requests := []models.MaintenanceRequest{
		{ID: primitive.NewObjectID(), Status: models.StatusPending, Priority: models.PriorityCritical, CreatedAt: now.Add(-time.Hour)},
		{ID: primitive.NewObjectID(), Status: models.StatusCompleted, CreatedAt: now.Add(-24 * time.Hour), CompletedAt: &done},
	}
	tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return(requests, nil)

	req := withClaims(httptest.NewRequest("GET", "/api/dashboard/kpis", nil), managerClaims())
	w := httptest.NewRecorder()

	handler.KPIs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var k stats.KPIs
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &k))
	assert.Equal(t, 2, k.TotalRequests)
	assert.Equal(t, 1, k.ActiveRequests)
	assert.Equal(t, 1, k.CriticalOpen)
	assert.Equal(t, 50.0, k.CompletionRate)
}

func TestDashboardHandler_Trends(t *testing.T) {
	tc, collections := newTestCollections()
	handler := NewDashboardHandler(collections)

	requests := []models.MaintenanceRequest{
		{ID: primitive.NewObjectID(), Type: models.TypeRepair, Status: models.StatusPending},
		{ID: primitive.NewObjectID(), Type: models.TypeRepair, Status: models.StatusCompleted},
		{ID: primitive.NewObjectID(), Type: models.TypeInspection, Status: models.StatusInProgress},
	}
	tc.requests.On("FindRequests", mock.Anything, bson.M(nil)).Return(requests, nil)

	req := withClaims(httptest.NewRequest("GET", "/api/dashboard/trends", nil), managerClaims())
	w := httptest.NewRecorder()

	handler.Trends(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var trends []stats.CategoryTrend
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &trends))
	assert.Len(t, trends, 2)
	assert.Equal(t, "repair", trends[0].Category)
	assert.Equal(t, 2, trends[0].Total)
}
