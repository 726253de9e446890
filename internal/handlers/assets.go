package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// AssetHandler handles asset management requests.
type AssetHandler struct {
	collections *db.Collections
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler(collections *db.Collections) *AssetHandler {
	return &AssetHandler{collections: collections}
}

// List handles GET /api/assets with category/status/team/search filters.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := bson.M{}
	if category := query.Get("category"); category != "" {
		filter["category"] = category
	}
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}
	if teamID := query.Get("teamId"); teamID != "" {
		filter["team_id"] = teamID
	}

	assets, err := h.collections.Assets.FindAssets(r.Context(), filter)
	if err != nil {
		writeError(w, r, "list_assets", apperr.Internalf(err, "failed to fetch assets"))
		return
	}

	if search := strings.ToLower(query.Get("search")); search != "" {
		filtered := assets[:0:0]
		for _, asset := range assets {
			if strings.Contains(strings.ToLower(asset.Name), search) ||
				strings.Contains(strings.ToLower(asset.AssetTag), search) ||
				strings.Contains(strings.ToLower(asset.Location), search) {
				filtered = append(filtered, asset)
			}
		}
		assets = filtered
	}

	writeJSON(w, http.StatusOK, assets)
}

// assetDetail is an asset with its team and maintenance history attached.
type assetDetail struct {
	models.Asset
	Team               *models.Team                `json:"team,omitempty"`
	MaintenanceHistory []models.MaintenanceRequest `json:"maintenanceHistory"`
}

// GetByID handles GET /api/assets/{id}.
func (h *AssetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	asset, err := h.collections.Assets.FindAssetByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "get_asset", apperr.NotFoundf("asset not found"))
		} else {
			writeError(w, r, "get_asset", apperr.Internalf(err, "failed to fetch asset"))
		}
		return
	}

	detail := assetDetail{Asset: *asset}
	if asset.TeamID != "" {
		if team, err := h.collections.Teams.FindTeamByID(r.Context(), asset.TeamID); err == nil {
			detail.Team = team
		}
	}

	history, err := h.collections.Requests.FindRequests(r.Context(), bson.M{"asset_id": id})
	if err != nil {
		writeError(w, r, "get_asset", apperr.Internalf(err, "failed to fetch asset"))
		return
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	detail.MaintenanceHistory = history

	writeJSON(w, http.StatusOK, detail)
}

// Create handles POST /api/assets.
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		writeError(w, r, "create_asset", apperr.Validationf("invalid JSON body"))
		return
	}

	if asset.Name == "" || asset.Category == "" {
		writeError(w, r, "create_asset", apperr.Validationf("name and category are required"))
		return
	}
	if asset.AssetTag == "" {
		asset.AssetTag = "ASSET-" + time.Now().Format("20060102150405")
	}
	if asset.Status == "" {
		asset.Status = models.AssetOperational
	}
	if !models.IsValidAssetStatus(asset.Status) {
		writeError(w, r, "create_asset", apperr.Validationf("invalid asset status %q", asset.Status))
		return
	}

	id, err := h.collections.Assets.InsertAsset(r.Context(), asset)
	if err != nil {
		writeError(w, r, "create_asset", apperr.Internalf(err, "failed to create asset"))
		return
	}

	created, err := h.collections.Assets.FindAssetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "create_asset", apperr.Internalf(err, "failed to load created asset"))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/assets/{id}.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, r, "update_asset", apperr.Validationf("invalid JSON body"))
		return
	}

	fields := bson.M{}
	// Translate the wire field names to their stored form; unknown keys are
	// dropped rather than written through.
	allowed := map[string]string{
		"name": "name", "assetTag": "asset_tag", "category": "category",
		"manufacturer": "manufacturer", "model": "model",
		"serialNumber": "serial_number", "location": "location",
		"teamId": "team_id", "status": "status",
		"specifications": "specifications",
	}
	for key, value := range updates {
		if stored, ok := allowed[key]; ok {
			fields[stored] = value
		}
	}
	if status, ok := fields["status"].(string); ok && !models.IsValidAssetStatus(models.AssetStatus(status)) {
		writeError(w, r, "update_asset", apperr.Validationf("invalid asset status %q", status))
		return
	}
	if len(fields) == 0 {
		writeError(w, r, "update_asset", apperr.Validationf("no updatable fields in request body"))
		return
	}

	if err := h.collections.Assets.UpdateAssetFields(r.Context(), id, fields); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "update_asset", apperr.NotFoundf("asset not found"))
		} else {
			writeError(w, r, "update_asset", apperr.Internalf(err, "failed to update asset"))
		}
		return
	}

	updated, err := h.collections.Assets.FindAssetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "update_asset", apperr.Internalf(err, "failed to load updated asset"))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/assets/{id}. Assets with open maintenance
// requests cannot be deleted.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.collections.Assets.FindAssetByID(r.Context(), id); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "delete_asset", apperr.NotFoundf("asset not found"))
		} else {
			writeError(w, r, "delete_asset", apperr.Internalf(err, "failed to delete asset"))
		}
		return
	}

	open, err := h.collections.Requests.FindRequests(r.Context(), bson.M{
		"asset_id": id,
		"status": bson.M{"$in": []string{
			string(models.StatusPending),
			string(models.StatusAssigned),
			string(models.StatusInProgress),
			string(models.StatusOnHold),
		}},
	})
	if err != nil {
		writeError(w, r, "delete_asset", apperr.Internalf(err, "failed to delete asset"))
		return
	}
	if len(open) > 0 {
		writeError(w, r, "delete_asset", apperr.Conflictf("cannot delete asset with open maintenance requests"))
		return
	}

	if err := h.collections.Assets.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, r, "delete_asset", apperr.Internalf(err, "failed to delete asset"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "asset deleted successfully"})
}

// Stats handles GET /api/assets/stats.
func (h *AssetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	assets, err := h.collections.Assets.FindAssets(r.Context(), nil)
	if err != nil {
		writeError(w, r, "asset_stats", apperr.Internalf(err, "failed to fetch asset statistics"))
		return
	}

	response := struct {
		Total      int            `json:"total"`
		ByCategory map[string]int `json:"byCategory"`
		ByStatus   map[string]int `json:"byStatus"`
	}{
		Total:      len(assets),
		ByCategory: map[string]int{},
		ByStatus:   map[string]int{},
	}
	for _, asset := range assets {
		if asset.Category != "" {
			response.ByCategory[asset.Category]++
		}
		if asset.Status != "" {
			response.ByStatus[string(asset.Status)]++
		}
	}
	writeJSON(w, http.StatusOK, response)
}
