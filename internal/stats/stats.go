// Package stats computes derived views over an in-memory snapshot of
// maintenance requests. Everything here is a pure function of the snapshot
// and a reference time, so callers re-fetch and recompute per request.
package stats

import (
	"math"
	"time"

	"github.com/gearguard/gearguard/internal/models"
)

// Stats is the statistics-aggregator output for one role-scoped snapshot.
type Stats struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	ByPriority        map[string]int `json:"byPriority"`
	ByType            map[string]int `json:"byType"`
	RecentCount       int            `json:"recentCount"`
	AvgCompletionTime int            `json:"avgCompletionTime"`
	AvgResponseTime   int            `json:"avgResponseTime"`
	CompletionRate    float64        `json:"completionRate"`
	OverdueCount      int            `json:"overdueCount"`
	ActiveCount       int            `json:"activeCount"`
}

// Compute derives the full statistics block from a snapshot.
func Compute(requests []models.MaintenanceRequest, now time.Time) Stats {
	s := Stats{
		Total:      len(requests),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
		ByType:     map[string]int{},
	}

	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	completed := 0

	for i := range requests {
		r := &requests[i]
		s.ByStatus[string(r.Status)]++
		s.ByPriority[string(r.Priority)]++
		s.ByType[string(r.Type)]++

		if !r.CreatedAt.Before(thirtyDaysAgo) {
			s.RecentCount++
		}
		if r.Status == models.StatusCompleted {
			completed++
		}
		if r.IsActive() {
			s.ActiveCount++
		}
		if isOverdue(r, now) {
			s.OverdueCount++
		}
	}

	s.AvgCompletionTime = AvgCompletionHours(requests)
	s.AvgResponseTime = AvgResponseHours(requests)
	s.CompletionRate = CompletionRate(completed, len(requests))
	return s
}

// AvgCompletionHours is the mean of (completedAt - createdAt) over completed
// requests with both timestamps, in whole hours. Zero when none qualify.
func AvgCompletionHours(requests []models.MaintenanceRequest) int {
	var total time.Duration
	var count int
	for i := range requests {
		r := &requests[i]
		if r.Status == models.StatusCompleted && r.CompletedAt != nil && !r.CreatedAt.IsZero() {
			total += r.CompletedAt.Sub(r.CreatedAt)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return roundHours(total, count)
}

// AvgResponseHours is the mean of (assignedAt - createdAt) over requests
// with both timestamps, in whole hours. Zero when none qualify.
func AvgResponseHours(requests []models.MaintenanceRequest) int {
	var total time.Duration
	var count int
	for i := range requests {
		r := &requests[i]
		if r.AssignedAt != nil && !r.CreatedAt.IsZero() {
			total += r.AssignedAt.Sub(r.CreatedAt)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return roundHours(total, count)
}

// CompletionRate is completed/total as a percentage with one decimal place.
// Zero when total is zero.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

func roundHours(total time.Duration, count int) int {
	mean := total.Hours() / float64(count)
	return int(math.Round(mean))
}

func isOverdue(r *models.MaintenanceRequest, now time.Time) bool {
	if r.Status == models.StatusCompleted || r.Status == models.StatusCancelled {
		return false
	}
	return r.ScheduledDate != nil && r.ScheduledDate.Before(now)
}

// KPIs is the key-performance-indicator rollup for the dashboard.
type KPIs struct {
	TotalRequests      int     `json:"totalRequests"`
	ActiveRequests     int     `json:"activeRequests"`
	CompletedThisMonth int     `json:"completedThisMonth"`
	CriticalOpen       int     `json:"criticalOpen"`
	OverdueRequests    int     `json:"overdueRequests"`
	AvgResponseTime    int     `json:"avgResponseTime"`
	CompletionRate     float64 `json:"completionRate"`
}

// ComputeKPIs derives the KPI block from a snapshot.
func ComputeKPIs(requests []models.MaintenanceRequest, now time.Time) KPIs {
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	k := KPIs{TotalRequests: len(requests)}

	completed := 0
	for i := range requests {
		r := &requests[i]
		if r.IsActive() {
			k.ActiveRequests++
		}
		if r.Status == models.StatusCompleted {
			completed++
			if !r.CreatedAt.Before(thirtyDaysAgo) {
				k.CompletedThisMonth++
			}
		}
		if r.Priority == models.PriorityCritical && r.Status != models.StatusCompleted {
			k.CriticalOpen++
		}
		if isOverdue(r, now) {
			k.OverdueRequests++
		}
	}

	k.AvgResponseTime = AvgResponseHours(requests)
	k.CompletionRate = CompletionRate(completed, len(requests))
	return k
}
