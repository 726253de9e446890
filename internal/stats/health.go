package stats

import (
	"sort"
	"time"

	"github.com/gearguard/gearguard/internal/models"
)

// AssetHealthEntry is the heuristic health score for one asset. The weights
// (-5 per request in the trailing 30 days, -20 per open critical request)
// are a heuristic carried over as-is, not a statistically derived model.
type AssetHealthEntry struct {
	AssetID        string             `json:"assetId"`
	AssetName      string             `json:"assetName"`
	AssetTag       string             `json:"assetTag"`
	Category       string             `json:"category"`
	TotalRequests  int                `json:"totalRequests"`
	RecentRequests int                `json:"recentRequests"`
	CriticalIssues int                `json:"criticalIssues"`
	HealthScore    int                `json:"healthScore"`
	Status         models.AssetStatus `json:"status"`
}

const healthReportLimit = 20

// AssetHealth scores every asset and returns the worst-scoring ones first,
// truncated to the top 20.
func AssetHealth(requests []models.MaintenanceRequest, assets []models.Asset, now time.Time) []AssetHealthEntry {
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)

	entries := make([]AssetHealthEntry, 0, len(assets))
	for _, asset := range assets {
		assetID := asset.ID.Hex()
		entry := AssetHealthEntry{
			AssetID:   assetID,
			AssetName: asset.Name,
			AssetTag:  asset.AssetTag,
			Category:  asset.Category,
			Status:    asset.Status,
		}

		for i := range requests {
			r := &requests[i]
			if r.AssetID != assetID {
				continue
			}
			entry.TotalRequests++
			if !r.CreatedAt.Before(thirtyDaysAgo) {
				entry.RecentRequests++
			}
			if r.Priority == models.PriorityCritical && r.Status != models.StatusCompleted {
				entry.CriticalIssues++
			}
		}

		score := 100 - entry.RecentRequests*5 - entry.CriticalIssues*20
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		entry.HealthScore = score
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].HealthScore < entries[j].HealthScore
	})
	if len(entries) > healthReportLimit {
		entries = entries[:healthReportLimit]
	}
	return entries
}
