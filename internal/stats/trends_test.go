package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gearguard/gearguard/internal/models"
)

func TestMonthlyTrend(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	requests := []models.MaintenanceRequest{
		{Status: models.StatusCompleted, CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusPending, CreatedAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusCompleted, CreatedAt: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
		// Thirteen months back, outside the window.
		{Status: models.StatusPending, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := MonthlyTrend(requests, now)

	assert.Len(t, buckets, 12)
	assert.Equal(t, "Jul 2024", buckets[0].Month)
	assert.Equal(t, "Jun 2025", buckets[11].Month)

	current := buckets[11]
	assert.Equal(t, 2, current.Created)
	assert.Equal(t, 1, current.Completed)
	assert.Equal(t, 1, current.Pending)

	april := buckets[9]
	assert.Equal(t, "Apr 2025", april.Month)
	assert.Equal(t, 1, april.Created)
	assert.Equal(t, 1, april.Completed)

	total := 0
	for _, b := range buckets {
		total += b.Created
	}
	assert.Equal(t, 3, total)
}

func TestWeeklyTrend(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	thisWeek := now.Add(-2 * 24 * time.Hour)
	lastWeek := now.Add(-10 * 24 * time.Hour)
	older := now.Add(-30 * 24 * time.Hour)

	t.Run("increase", func(t *testing.T) {
		requests := []models.MaintenanceRequest{
			{CreatedAt: thisWeek}, {CreatedAt: thisWeek}, {CreatedAt: thisWeek},
			{CreatedAt: lastWeek}, {CreatedAt: lastWeek},
			{CreatedAt: older},
		}
		assert.Equal(t, 50.0, WeeklyTrend(requests, now))
	})

	t.Run("decrease", func(t *testing.T) {
		requests := []models.MaintenanceRequest{
			{CreatedAt: thisWeek},
			{CreatedAt: lastWeek}, {CreatedAt: lastWeek}, {CreatedAt: lastWeek},
		}
		assert.Equal(t, -66.7, WeeklyTrend(requests, now))
	})

	t.Run("empty previous week is zero not infinity", func(t *testing.T) {
		requests := []models.MaintenanceRequest{
			{CreatedAt: thisWeek}, {CreatedAt: thisWeek},
		}
		assert.Equal(t, 0.0, WeeklyTrend(requests, now))
	})

	t.Run("no requests", func(t *testing.T) {
		assert.Equal(t, 0.0, WeeklyTrend(nil, now))
	})
}

func TestTeamPerformance(t *testing.T) {
	mechanical := models.Team{ID: primitive.NewObjectID(), Name: "Mechanical"}
	electrical := models.Team{ID: primitive.NewObjectID(), Name: "Electrical"}
	idle := models.Team{ID: primitive.NewObjectID(), Name: "Idle"}

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	requests := []models.MaintenanceRequest{
		{
			AssignedTeamID: mechanical.ID.Hex(), Status: models.StatusCompleted,
			CreatedAt: base, CompletedAt: timePtr(base.Add(4 * time.Hour)),
		},
		{AssignedTeamID: mechanical.ID.Hex(), Status: models.StatusInProgress, CreatedAt: base},
		{AssignedTeamID: electrical.ID.Hex(), Status: models.StatusPending, CreatedAt: base},
		// Direct assignment without a team, counts for nobody.
		{Status: models.StatusPending, CreatedAt: base},
	}

	metrics := TeamPerformance(requests, []models.Team{mechanical, electrical, idle})

	assert.Len(t, metrics, 2)

	assert.Equal(t, mechanical.ID.Hex(), metrics[0].TeamID)
	assert.Equal(t, "Mechanical", metrics[0].TeamName)
	assert.Equal(t, 2, metrics[0].TotalRequests)
	assert.Equal(t, 1, metrics[0].Completed)
	assert.Equal(t, 1, metrics[0].Active)
	assert.Equal(t, 50.0, metrics[0].CompletionRate)
	assert.Equal(t, 4, metrics[0].AvgCompletionTime)

	assert.Equal(t, "Electrical", metrics[1].TeamName)
	assert.Equal(t, 1, metrics[1].TotalRequests)
	assert.Equal(t, 0, metrics[1].Completed)
}

func TestTrendsByCategory(t *testing.T) {
	requests := []models.MaintenanceRequest{
		{Type: models.TypeRepair, Status: models.StatusPending},
		{Type: models.TypeRepair, Status: models.StatusCompleted},
		{Type: models.TypeRepair, Status: models.StatusInProgress},
		{Type: models.TypeInspection, Status: models.StatusCompleted},
		{Type: "", Status: models.StatusPending},
	}

	trends := TrendsByCategory(requests)

	assert.Len(t, trends, 3)
	assert.Equal(t, "repair", trends[0].Category)
	assert.Equal(t, 3, trends[0].Total)
	assert.Equal(t, 1, trends[0].Completed)
	assert.Equal(t, 1, trends[0].Pending)
	assert.Equal(t, 1, trends[0].InProgress)

	assert.Equal(t, "inspection", trends[1].Category)
	assert.Equal(t, "other", trends[2].Category)
	assert.Equal(t, 1, trends[2].Total)
}
