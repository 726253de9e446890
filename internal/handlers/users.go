package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// UserHandler handles user management requests (manager-only surface).
type UserHandler struct {
	users db.UserCollection
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users db.UserCollection) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users with optional role and team filters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := bson.M{}
	if role := query.Get("role"); role != "" {
		filter["role"] = role
	}
	if teamID := query.Get("teamId"); teamID != "" {
		filter["team_id"] = teamID
	}

	users, err := h.users.FindUsers(r.Context(), filter)
	if err != nil {
		writeError(w, r, "list_users", apperr.Internalf(err, "failed to fetch users"))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetByID handles GET /api/users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "get_user", apperr.NotFoundf("user not found"))
		} else {
			writeError(w, r, "get_user", apperr.Internalf(err, "failed to fetch user"))
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}: role, team assignment, activation and
// profile fields.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, r, "update_user", apperr.Validationf("invalid JSON body"))
		return
	}

	allowed := map[string]string{
		"name": "name", "role": "role", "teamId": "team_id",
		"department": "department", "phone": "phone",
		"isActive": "is_active",
	}
	fields := bson.M{}
	for key, value := range updates {
		if stored, ok := allowed[key]; ok {
			fields[stored] = value
		}
	}
	if role, ok := fields["role"].(string); ok && !models.IsValidRole(models.Role(role)) {
		writeError(w, r, "update_user", apperr.Validationf("invalid role %q", role))
		return
	}
	if len(fields) == 0 {
		writeError(w, r, "update_user", apperr.Validationf("no updatable fields in request body"))
		return
	}

	if err := h.users.UpdateUserFields(r.Context(), id, fields); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "update_user", apperr.NotFoundf("user not found"))
		} else {
			writeError(w, r, "update_user", apperr.Internalf(err, "failed to update user"))
		}
		return
	}

	updated, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "update_user", apperr.Internalf(err, "failed to load updated user"))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
