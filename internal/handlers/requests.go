package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/events"
	"github.com/gearguard/gearguard/internal/models"
	"github.com/gearguard/gearguard/internal/stats"
)

// RequestHandler owns the maintenance-request lifecycle: creation,
// role-scoped retrieval, status transitions, comments and the delete guard.
type RequestHandler struct {
	collections *db.Collections
	publisher   events.Publisher
}

// NewRequestHandler creates a new maintenance-request handler.
func NewRequestHandler(collections *db.Collections, publisher events.Publisher) *RequestHandler {
	return &RequestHandler{collections: collections, publisher: publisher}
}

// Create handles POST /api/maintenance-requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "create_request", err)
		return
	}

	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, "create_request", apperr.Validationf("invalid JSON body"))
		return
	}

	if input.AssetID == "" || input.Type == "" || strings.TrimSpace(input.Description) == "" {
		writeError(w, r, "create_request", apperr.Validationf("asset, type, and description are required"))
		return
	}
	if !models.IsValidRequestType(input.Type) {
		writeError(w, r, "create_request", apperr.Validationf("invalid request type %q", input.Type))
		return
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(input.Priority) {
		writeError(w, r, "create_request", apperr.Validationf("invalid priority %q", input.Priority))
		return
	}
	if input.Urgency == "" {
		input.Urgency = models.UrgencyNormal
	}
	if !models.IsValidUrgency(input.Urgency) {
		writeError(w, r, "create_request", apperr.Validationf("invalid urgency %q", input.Urgency))
		return
	}

	asset, err := h.collections.Assets.FindAssetByID(r.Context(), input.AssetID)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "create_request", apperr.NotFoundf("asset not found"))
		} else {
			writeError(w, r, "create_request", apperr.Internalf(err, "failed to create maintenance request"))
		}
		return
	}

	sequence, err := h.collections.Counters.Next(r.Context(), db.RequestNumberSequence)
	if err != nil {
		writeError(w, r, "create_request", apperr.Internalf(err, "failed to create maintenance request"))
		return
	}

	now := time.Now()
	request := models.MaintenanceRequest{
		RequestNumber:  db.FormatRequestNumber(sequence),
		AssetID:        input.AssetID,
		AssetName:      asset.Name,
		Type:           input.Type,
		Priority:       input.Priority,
		Urgency:        input.Urgency,
		Description:    strings.TrimSpace(input.Description),
		Status:         models.StatusPending,
		RequestedBy:    claims.UserID,
		CreatedBy:      claims.UserID,
		RequesterName:  claims.Name,
		RequesterEmail: claims.Email,
		DueDate:        input.DueDate,
		Comments:       []models.Comment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := h.collections.Requests.InsertRequest(r.Context(), request)
	if err != nil {
		writeError(w, r, "create_request", apperr.Internalf(err, "failed to create maintenance request"))
		return
	}
	request.ID, _ = primitive.ObjectIDFromHex(id)

	h.publisher.PublishRequestEvent(events.RequestEvent{
		Action:        "created",
		RequestID:     id,
		RequestNumber: request.RequestNumber,
		Status:        string(request.Status),
		ActorID:       claims.UserID,
		ActorRole:     string(claims.Role),
		Timestamp:     now,
	})

	writeJSON(w, http.StatusCreated, request)
}

// List handles GET /api/maintenance-requests with role scoping and optional
// in-memory filters.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "list_requests", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "list_requests", apperr.Internalf(err, "failed to fetch maintenance requests"))
		return
	}

	requests = applyListFilters(requests, r.URL.Query(), claims.Role)

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	details := make([]models.RequestDetail, 0, len(requests))
	for _, request := range requests {
		details = append(details, decorateRequest(r.Context(), h.collections, request))
	}
	writeJSON(w, http.StatusOK, details)
}

// applyListFilters narrows a scoped snapshot by the query-string filters.
// assignedTo and requestedBy are manager-only.
func applyListFilters(requests []models.MaintenanceRequest, query map[string][]string, role models.Role) []models.MaintenanceRequest {
	first := func(key string) string {
		if values := query[key]; len(values) > 0 {
			return values[0]
		}
		return ""
	}

	filtered := requests[:0:0]
	status := first("status")
	priority := first("priority")
	assetID := first("assetId")
	requestType := first("type")
	assignedTo := first("assignedTo")
	requestedBy := first("requestedBy")
	if role != models.RoleManager {
		assignedTo, requestedBy = "", ""
	}

	for _, req := range requests {
		if status != "" && string(req.Status) != status {
			continue
		}
		if priority != "" && string(req.Priority) != priority {
			continue
		}
		if assetID != "" && req.AssetID != assetID {
			continue
		}
		if requestType != "" && string(req.Type) != requestType {
			continue
		}
		if assignedTo != "" && req.AssignedTo != assignedTo {
			continue
		}
		if requestedBy != "" && req.RequestedBy != requestedBy {
			continue
		}
		filtered = append(filtered, req)
	}
	return filtered
}

// GetByID handles GET /api/maintenance-requests/{id}.
func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	request, err := h.collections.Requests.FindRequestByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "get_request", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "get_request", apperr.Internalf(err, "failed to fetch maintenance request"))
		}
		return
	}
	writeJSON(w, http.StatusOK, decorateRequest(r.Context(), h.collections, *request))
}

// Update handles PUT /api/maintenance-requests/{id}: partial updates and
// status transitions.
func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "update_request", err)
		return
	}

	id := r.PathValue("id")
	var update models.RequestUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, r, "update_request", apperr.Validationf("invalid JSON body"))
		return
	}

	current, err := h.collections.Requests.FindRequestByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "update_request", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "update_request", apperr.Internalf(err, "failed to update maintenance request"))
		}
		return
	}

	fields, err := h.buildUpdateFields(r, current, &update)
	if err != nil {
		writeError(w, r, "update_request", err)
		return
	}

	if err := h.collections.Requests.UpdateRequestFields(r.Context(), id, fields); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "update_request", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "update_request", apperr.Internalf(err, "failed to update maintenance request"))
		}
		return
	}

	updated, err := h.collections.Requests.FindRequestByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "update_request", apperr.Internalf(err, "failed to fetch updated request"))
		return
	}

	h.publisher.PublishRequestEvent(events.RequestEvent{
		Action:        "updated",
		RequestID:     id,
		RequestNumber: updated.RequestNumber,
		Status:        string(updated.Status),
		ActorID:       claims.UserID,
		ActorRole:     string(claims.Role),
		Timestamp:     time.Now(),
	})

	writeJSON(w, http.StatusOK, updated)
}

// buildUpdateFields validates the typed update against the current record
// and produces the $set document. Validation order: assignee, team, then
// status transition.
func (h *RequestHandler) buildUpdateFields(r *http.Request, current *models.MaintenanceRequest, update *models.RequestUpdate) (bson.M, error) {
	fields := bson.M{}
	now := time.Now()

	if update.AssignedTo != nil && *update.AssignedTo != "" {
		technician, err := h.collections.Users.FindUserByID(r.Context(), *update.AssignedTo)
		if err != nil {
			if isNoDocuments(err) {
				return nil, apperr.NotFoundf("technician not found")
			}
			return nil, apperr.Internalf(err, "failed to resolve technician")
		}
		if technician.Role != models.RoleTechnician {
			return nil, apperr.Validationf("user is not a technician")
		}
		fields["assigned_to"] = *update.AssignedTo
		fields["assigned_at"] = now
	}

	if update.AssignedTeamID != nil && *update.AssignedTeamID != "" {
		if _, err := h.collections.Teams.FindTeamByID(r.Context(), *update.AssignedTeamID); err != nil {
			if isNoDocuments(err) {
				return nil, apperr.NotFoundf("team not found")
			}
			return nil, apperr.Internalf(err, "failed to resolve team")
		}
		fields["assigned_team_id"] = *update.AssignedTeamID
	}

	if update.Status != nil {
		next := models.NormalizeStatus(*update.Status)
		if !models.IsValidStatus(next) {
			return nil, apperr.Validationf("invalid status %q", *update.Status)
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, apperr.InvalidTransitionf("cannot transition from %s to %s", current.Status, next)
		}
		if next == models.StatusCompleted {
			notes := ""
			if update.CompletionNotes != nil {
				notes = strings.TrimSpace(*update.CompletionNotes)
			}
			if notes == "" {
				return nil, apperr.Validationf("completion notes are required to complete a request")
			}
			fields["completion_notes"] = notes
			fields["completed_at"] = now
		}
		fields["status"] = string(next)
	} else if update.CompletionNotes != nil {
		fields["completion_notes"] = strings.TrimSpace(*update.CompletionNotes)
	}

	if update.Priority != nil {
		if !models.IsValidPriority(*update.Priority) {
			return nil, apperr.Validationf("invalid priority %q", *update.Priority)
		}
		fields["priority"] = string(*update.Priority)
	}
	if update.Urgency != nil {
		if !models.IsValidUrgency(*update.Urgency) {
			return nil, apperr.Validationf("invalid urgency %q", *update.Urgency)
		}
		fields["urgency"] = string(*update.Urgency)
	}
	if update.Type != nil {
		if !models.IsValidRequestType(*update.Type) {
			return nil, apperr.Validationf("invalid request type %q", *update.Type)
		}
		fields["type"] = string(*update.Type)
	}
	if update.Description != nil {
		if strings.TrimSpace(*update.Description) == "" {
			return nil, apperr.Validationf("description cannot be empty")
		}
		fields["description"] = strings.TrimSpace(*update.Description)
	}
	if update.ScheduledDate != nil {
		fields["scheduled_date"] = *update.ScheduledDate
	}
	if update.DueDate != nil {
		fields["due_date"] = *update.DueDate
	}
	if update.EstimatedDuration != nil {
		fields["estimated_duration"] = *update.EstimatedDuration
	}
	if update.ScheduleNotes != nil {
		fields["schedule_notes"] = *update.ScheduleNotes
	}

	if len(fields) == 0 {
		return nil, apperr.Validationf("no updatable fields in request body")
	}
	return fields, nil
}

// Delete handles DELETE /api/maintenance-requests/{id}. Only pending or
// cancelled requests may be deleted.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "delete_request", err)
		return
	}

	id := r.PathValue("id")
	request, err := h.collections.Requests.FindRequestByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "delete_request", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "delete_request", apperr.Internalf(err, "failed to delete maintenance request"))
		}
		return
	}

	if request.Status != models.StatusPending && request.Status != models.StatusCancelled {
		writeError(w, r, "delete_request", apperr.Conflictf("can only delete pending or cancelled requests"))
		return
	}

	if err := h.collections.Requests.DeleteRequest(r.Context(), id); err != nil {
		writeError(w, r, "delete_request", apperr.Internalf(err, "failed to delete maintenance request"))
		return
	}

	h.publisher.PublishRequestEvent(events.RequestEvent{
		Action:        "deleted",
		RequestID:     id,
		RequestNumber: request.RequestNumber,
		ActorID:       claims.UserID,
		ActorRole:     string(claims.Role),
		Timestamp:     time.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "maintenance request deleted successfully"})
}

// AddComment handles POST /api/maintenance-requests/{id}/comments. Comments
// are append-only.
func (h *RequestHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "add_comment", err)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "add_comment", apperr.Validationf("invalid JSON body"))
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		writeError(w, r, "add_comment", apperr.Validationf("comment text is required"))
		return
	}

	id := r.PathValue("id")
	request, err := h.collections.Requests.FindRequestByID(r.Context(), id)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "add_comment", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "add_comment", apperr.Internalf(err, "failed to add comment"))
		}
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    claims.UserID,
		UserName:  claims.Name,
		Text:      text,
		CreatedAt: time.Now(),
	}

	comments := append(request.Comments, comment)
	if err := h.collections.Requests.UpdateRequestFields(r.Context(), id, bson.M{"comments": comments}); err != nil {
		writeError(w, r, "add_comment", apperr.Internalf(err, "failed to add comment"))
		return
	}

	h.publisher.PublishRequestEvent(events.RequestEvent{
		Action:        "commented",
		RequestID:     id,
		RequestNumber: request.RequestNumber,
		ActorID:       claims.UserID,
		ActorRole:     string(claims.Role),
		Timestamp:     comment.CreatedAt,
	})

	writeJSON(w, http.StatusCreated, comment)
}

// Stats handles GET /api/maintenance-requests/stats.
func (h *RequestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "request_stats", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "request_stats", apperr.Internalf(err, "failed to fetch request statistics"))
		return
	}

	writeJSON(w, http.StatusOK, stats.Compute(requests, time.Now()))
}
