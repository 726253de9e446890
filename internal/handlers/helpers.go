package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/middleware"
	"github.com/gearguard/gearguard/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError converts an error to its JSON body and status, logging internal
// failures with enough context to diagnose.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.Internal {
		fields := log.Fields{"operation": operation, "path": r.URL.Path}
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			fields["role"] = claims.Role
			fields["userId"] = claims.UserID
		}
		log.WithError(appErr.Err).WithFields(fields).Error("request failed")
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{"message": appErr.Message})
}

// callerClaims pulls the authenticated caller out of the request context.
func callerClaims(r *http.Request) (*models.Claims, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil, apperr.Validationf("user context not found")
	}
	return claims, nil
}

// isNoDocuments reports whether err means the referenced document is absent.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// fetchScopedRequests returns the snapshot of requests visible to the
// caller. Employees see what they requested; technicians see direct plus
// team assignments, deduplicated; managers see everything.
func fetchScopedRequests(ctx context.Context, requests db.RequestCollection, users db.UserCollection, claims *models.Claims) ([]models.MaintenanceRequest, error) {
	switch claims.Role {
	case models.RoleEmployee:
		return requests.FindRequests(ctx, bson.M{"requested_by": claims.UserID})

	case models.RoleTechnician:
		direct, err := requests.FindRequests(ctx, bson.M{"assigned_to": claims.UserID})
		if err != nil {
			return nil, err
		}

		// The team id in the token can be stale; resolve from the store.
		teamID := claims.TeamID
		if user, err := users.FindUserByID(ctx, claims.UserID); err == nil {
			teamID = user.TeamID
		}
		if teamID == "" {
			return direct, nil
		}

		teamAssigned, err := requests.FindRequests(ctx, bson.M{"assigned_team_id": teamID})
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(direct))
		combined := make([]models.MaintenanceRequest, 0, len(direct)+len(teamAssigned))
		for _, r := range append(direct, teamAssigned...) {
			id := r.ID.Hex()
			if seen[id] {
				continue
			}
			seen[id] = true
			combined = append(combined, r)
		}
		return combined, nil

	default:
		return requests.FindRequests(ctx, nil)
	}
}

// decorateRequest attaches the denormalized asset, requester, technician and
// team sub-objects. Each reference is a separate read; lookups that fail
// leave the decoration empty rather than failing the response.
func decorateRequest(ctx context.Context, c *db.Collections, request models.MaintenanceRequest) models.RequestDetail {
	detail := models.RequestDetail{MaintenanceRequest: request}

	if request.AssetID != "" {
		if asset, err := c.Assets.FindAssetByID(ctx, request.AssetID); err == nil {
			detail.Asset = asset
		}
	}
	if request.RequestedBy != "" {
		if user, err := c.Users.FindUserByID(ctx, request.RequestedBy); err == nil {
			detail.Requester = user.Ref()
		}
	}
	if request.AssignedTo != "" {
		if user, err := c.Users.FindUserByID(ctx, request.AssignedTo); err == nil {
			detail.Technician = user.Ref()
		}
	}
	if request.AssignedTeamID != "" {
		if team, err := c.Teams.FindTeamByID(ctx, request.AssignedTeamID); err == nil {
			detail.TeamName = team.Name
			detail.TeamSpecialization = team.Specialization
		}
	}
	return detail
}
