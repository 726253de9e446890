package stats

import (
	"math"
	"time"

	"github.com/gearguard/gearguard/internal/models"
)

// MonthBucket is one month of the trailing-12-month trend, oldest first.
type MonthBucket struct {
	Month     string `json:"month"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// Trends is the trend-aggregator output.
type Trends struct {
	Monthly     []MonthBucket `json:"monthly"`
	WeeklyTrend float64       `json:"weeklyTrend"`
}

// ComputeTrends derives monthly buckets and the week-over-week change.
func ComputeTrends(requests []models.MaintenanceRequest, now time.Time) Trends {
	return Trends{
		Monthly:     MonthlyTrend(requests, now),
		WeeklyTrend: WeeklyTrend(requests, now),
	}
}

// MonthlyTrend counts requests created in each of the trailing 12 calendar
// months. A request counts as completed in the month it was created.
func MonthlyTrend(requests []models.MaintenanceRequest, now time.Time) []MonthBucket {
	buckets := make([]MonthBucket, 0, 12)
	for i := 11; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		nextMonth := monthStart.AddDate(0, 1, 0)

		created, completed := 0, 0
		for j := range requests {
			r := &requests[j]
			if r.CreatedAt.Before(monthStart) || !r.CreatedAt.Before(nextMonth) {
				continue
			}
			created++
			if r.Status == models.StatusCompleted {
				completed++
			}
		}

		buckets = append(buckets, MonthBucket{
			Month:     monthStart.Format("Jan 2006"),
			Created:   created,
			Completed: completed,
			Pending:   created - completed,
		})
	}
	return buckets
}

// WeeklyTrend is the percentage change in creation count between the most
// recent 7-day window and the preceding one, one decimal place. Zero when
// the preceding window is empty.
func WeeklyTrend(requests []models.MaintenanceRequest, now time.Time) float64 {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	thisWeek, lastWeek := 0, 0
	for i := range requests {
		created := requests[i].CreatedAt
		switch {
		case !created.Before(weekAgo):
			thisWeek++
		case !created.Before(twoWeeksAgo):
			lastWeek++
		}
	}

	if lastWeek == 0 {
		return 0
	}
	change := float64(thisWeek-lastWeek) / float64(lastWeek) * 100
	return math.Round(change*10) / 10
}

// TeamMetrics is the per-team performance rollup.
type TeamMetrics struct {
	TeamID            string  `json:"teamId"`
	TeamName          string  `json:"teamName"`
	TotalRequests     int     `json:"totalRequests"`
	Completed         int     `json:"completed"`
	Active            int     `json:"active"`
	CompletionRate    float64 `json:"completionRate"`
	AvgCompletionTime int     `json:"avgCompletionTime"`
}

// TeamPerformance computes metrics per team over the team-assigned subset of
// the snapshot. Teams with no requests are excluded.
func TeamPerformance(requests []models.MaintenanceRequest, teams []models.Team) []TeamMetrics {
	metrics := make([]TeamMetrics, 0, len(teams))
	for _, team := range teams {
		teamID := team.ID.Hex()
		var teamRequests []models.MaintenanceRequest
		for i := range requests {
			if requests[i].AssignedTeamID == teamID {
				teamRequests = append(teamRequests, requests[i])
			}
		}
		if len(teamRequests) == 0 {
			continue
		}

		completed, active := 0, 0
		for i := range teamRequests {
			if teamRequests[i].Status == models.StatusCompleted {
				completed++
			}
			if teamRequests[i].IsActive() {
				active++
			}
		}

		metrics = append(metrics, TeamMetrics{
			TeamID:            teamID,
			TeamName:          team.Name,
			TotalRequests:     len(teamRequests),
			Completed:         completed,
			Active:            active,
			CompletionRate:    CompletionRate(completed, len(teamRequests)),
			AvgCompletionTime: AvgCompletionHours(teamRequests),
		})
	}
	return metrics
}

// CategoryTrend is the per-type breakdown for the trends endpoint.
type CategoryTrend struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"inProgress"`
}

// TrendsByCategory groups the snapshot by request type.
func TrendsByCategory(requests []models.MaintenanceRequest) []CategoryTrend {
	index := map[string]*CategoryTrend{}
	order := []string{}
	for i := range requests {
		r := &requests[i]
		category := string(r.Type)
		if category == "" {
			category = "other"
		}
		trend, ok := index[category]
		if !ok {
			trend = &CategoryTrend{Category: category}
			index[category] = trend
			order = append(order, category)
		}
		trend.Total++
		switch r.Status {
		case models.StatusCompleted:
			trend.Completed++
		case models.StatusPending:
			trend.Pending++
		case models.StatusInProgress:
			trend.InProgress++
		}
	}

	trends := make([]CategoryTrend, 0, len(order))
	for _, category := range order {
		trends = append(trends, *index[category])
	}
	return trends
}
