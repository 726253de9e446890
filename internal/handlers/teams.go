package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// TeamHandler handles team management requests.
type TeamHandler struct {
	collections *db.Collections
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(collections *db.Collections) *TeamHandler {
	return &TeamHandler{collections: collections}
}

// List handles GET /api/teams with derived member and asset counts.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.collections.Teams.FindTeams(r.Context(), nil)
	if err != nil {
		writeError(w, r, "list_teams", apperr.Internalf(err, "failed to fetch teams"))
		return
	}

	for i := range teams {
		teamID := teams[i].ID.Hex()
		if members, err := h.collections.Users.FindUsers(r.Context(), bson.M{"team_id": teamID}); err == nil {
			teams[i].MemberCount = len(members)
		}
		if assets, err := h.collections.Assets.FindAssets(r.Context(), bson.M{"team_id": teamID}); err == nil {
			teams[i].AssetCount = len(assets)
		}
	}
	writeJSON(w, http.StatusOK, teams)
}

// teamDetail is a team with its members, assets and recent requests.
type teamDetail struct {
	models.Team
	Members        []models.User               `json:"members"`
	Assets         []models.Asset              `json:"assets"`
	RecentRequests []models.MaintenanceRequest `json:"recentRequests"`
}

// GetByID handles GET /api/teams/{id}.
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	team, err := h.collections.Teams.FindTeamByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "get_team", apperr.NotFoundf("team not found"))
		} else {
			writeError(w, r, "get_team", apperr.Internalf(err, "failed to fetch team"))
		}
		return
	}

	detail := teamDetail{Team: *team}

	members, err := h.collections.Users.FindUsers(r.Context(), bson.M{"team_id": id})
	if err != nil {
		writeError(w, r, "get_team", apperr.Internalf(err, "failed to fetch team"))
		return
	}
	detail.Members = members
	detail.MemberCount = len(members)

	assets, err := h.collections.Assets.FindAssets(r.Context(), bson.M{"team_id": id})
	if err != nil {
		writeError(w, r, "get_team", apperr.Internalf(err, "failed to fetch team"))
		return
	}
	detail.Assets = assets
	detail.AssetCount = len(assets)

	requests, err := h.collections.Requests.FindRequests(r.Context(), bson.M{"assigned_team_id": id})
	if err != nil {
		writeError(w, r, "get_team", apperr.Internalf(err, "failed to fetch team"))
		return
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	if len(requests) > 10 {
		requests = requests[:10]
	}
	detail.RecentRequests = requests

	writeJSON(w, http.StatusOK, detail)
}

// Create handles POST /api/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var team models.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		writeError(w, r, "create_team", apperr.Validationf("invalid JSON body"))
		return
	}
	if team.Name == "" {
		writeError(w, r, "create_team", apperr.Validationf("team name is required"))
		return
	}

	id, err := h.collections.Teams.InsertTeam(r.Context(), team)
	if err != nil {
		writeError(w, r, "create_team", apperr.Internalf(err, "failed to create team"))
		return
	}

	created, err := h.collections.Teams.FindTeamByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "create_team", apperr.Internalf(err, "failed to load created team"))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/teams/{id}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, r, "update_team", apperr.Validationf("invalid JSON body"))
		return
	}

	allowed := map[string]string{
		"name": "name", "specialization": "specialization",
		"description": "description", "color": "color",
	}
	fields := bson.M{}
	for key, value := range updates {
		if stored, ok := allowed[key]; ok {
			fields[stored] = value
		}
	}
	if len(fields) == 0 {
		writeError(w, r, "update_team", apperr.Validationf("no updatable fields in request body"))
		return
	}

	if err := h.collections.Teams.UpdateTeamFields(r.Context(), id, fields); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "update_team", apperr.NotFoundf("team not found"))
		} else {
			writeError(w, r, "update_team", apperr.Internalf(err, "failed to update team"))
		}
		return
	}

	updated, err := h.collections.Teams.FindTeamByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "update_team", apperr.Internalf(err, "failed to load updated team"))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/teams/{id}. Teams with members cannot be
// deleted.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.collections.Teams.FindTeamByID(r.Context(), id); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "delete_team", apperr.NotFoundf("team not found"))
		} else {
			writeError(w, r, "delete_team", apperr.Internalf(err, "failed to delete team"))
		}
		return
	}

	members, err := h.collections.Users.FindUsers(r.Context(), bson.M{"team_id": id})
	if err != nil {
		writeError(w, r, "delete_team", apperr.Internalf(err, "failed to delete team"))
		return
	}
	if len(members) > 0 {
		writeError(w, r, "delete_team", apperr.Conflictf("cannot delete a team that still has members"))
		return
	}

	if err := h.collections.Teams.DeleteTeam(r.Context(), id); err != nil {
		writeError(w, r, "delete_team", apperr.Internalf(err, "failed to delete team"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "team deleted successfully"})
}
