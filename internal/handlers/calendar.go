package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// CalendarHandler projects maintenance requests onto calendar events,
// deadlines and team schedules.
type CalendarHandler struct {
	collections *db.Collections
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(collections *db.Collections) *CalendarHandler {
	return &CalendarHandler{collections: collections}
}

// CalendarEvent is one request projected onto the calendar.
type CalendarEvent struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Type          string          `json:"type"`
	Status        models.Status   `json:"status"`
	Priority      models.Priority `json:"priority"`
	RequestNumber string          `json:"requestNumber"`
	AssetName     string          `json:"assetName"`
	Description   string          `json:"description"`
	AllDay        bool            `json:"allDay"`
}

// eventFromRequest maps a request onto its calendar slot: scheduled date
// when present, creation date otherwise; completion date closes the slot.
func eventFromRequest(r *models.MaintenanceRequest, assetName string) CalendarEvent {
	start := r.EffectiveDate()
	end := start
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return CalendarEvent{
		ID:            r.ID.Hex(),
		Title:         r.RequestNumber + " - " + assetName,
		Start:         start,
		End:           end,
		Type:          "maintenance",
		Status:        r.Status,
		Priority:      r.Priority,
		RequestNumber: r.RequestNumber,
		AssetName:     assetName,
		Description:   r.Description,
		AllDay:        r.ScheduledDate == nil,
	}
}

// Events handles GET /api/calendar/events with an optional inclusive date
// range.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "calendar_events", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "calendar_events", apperr.Internalf(err, "failed to fetch calendar events"))
		return
	}

	events := make([]CalendarEvent, 0, len(requests))
	for i := range requests {
		events = append(events, eventFromRequest(&requests[i], h.assetName(r, &requests[i])))
	}

	query := r.URL.Query()
	if start, end := query.Get("startDate"), query.Get("endDate"); start != "" && end != "" {
		startTime, err := parseDate(start)
		if err != nil {
			writeError(w, r, "calendar_events", apperr.Validationf("invalid startDate %q", start))
			return
		}
		endTime, err := parseDate(end)
		if err != nil {
			writeError(w, r, "calendar_events", apperr.Validationf("invalid endDate %q", end))
			return
		}
		filtered := events[:0:0]
		for _, event := range events {
			if !event.Start.Before(startTime) && !event.Start.After(endTime) {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	writeJSON(w, http.StatusOK, events)
}

// assetName resolves an asset's current name, falling back to the
// denormalized copy on the request.
func (h *CalendarHandler) assetName(r *http.Request, request *models.MaintenanceRequest) string {
	if request.AssetID != "" {
		if asset, err := h.collections.Assets.FindAssetByID(r.Context(), request.AssetID); err == nil {
			return asset.Name
		}
	}
	return request.AssetName
}

// Deadline is an upcoming (or overdue) scheduled request.
type Deadline struct {
	ID            string             `json:"id"`
	RequestNumber string             `json:"requestNumber"`
	AssetName     string             `json:"assetName"`
	ScheduledDate time.Time          `json:"scheduledDate"`
	DaysUntil     int                `json:"daysUntil"`
	IsOverdue     bool               `json:"isOverdue"`
	Priority      models.Priority    `json:"priority"`
	Status        models.Status      `json:"status"`
	Type          models.RequestType `json:"type"`
}

// upcomingDeadlines keeps scheduled, non-terminal requests due within the
// window. Requests already past their scheduled date stay in with a
// negative days-until and the overdue flag set.
func upcomingDeadlines(requests []models.MaintenanceRequest, now time.Time, days int, assetName func(*models.MaintenanceRequest) string) []Deadline {
	horizon := now.AddDate(0, 0, days)
	deadlines := []Deadline{}
	for i := range requests {
		r := &requests[i]
		if r.ScheduledDate == nil || r.Status.IsTerminal() {
			continue
		}
		scheduled := *r.ScheduledDate
		if scheduled.After(horizon) {
			continue
		}
		daysUntil := int(math.Ceil(scheduled.Sub(now).Hours() / 24))
		deadlines = append(deadlines, Deadline{
			ID:            r.ID.Hex(),
			RequestNumber: r.RequestNumber,
			AssetName:     assetName(r),
			ScheduledDate: scheduled,
			DaysUntil:     daysUntil,
			IsOverdue:     daysUntil < 0,
			Priority:      r.Priority,
			Status:        r.Status,
			Type:          r.Type,
		})
	}
	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].ScheduledDate.Before(deadlines[j].ScheduledDate)
	})
	return deadlines
}

// Deadlines handles GET /api/calendar/deadlines?days=N (default 7).
func (h *CalendarHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "calendar_deadlines", err)
		return
	}

	days := 7
	if value := r.URL.Query().Get("days"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			writeError(w, r, "calendar_deadlines", apperr.Validationf("invalid days value %q", value))
			return
		}
		days = parsed
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "calendar_deadlines", apperr.Internalf(err, "failed to fetch deadlines"))
		return
	}

	deadlines := upcomingDeadlines(requests, time.Now(), days, func(request *models.MaintenanceRequest) string {
		return h.assetName(r, request)
	})
	writeJSON(w, http.StatusOK, deadlines)
}

// ScheduleItem is one entry of a team schedule.
type ScheduleItem struct {
	ID                string             `json:"id"`
	RequestNumber     string             `json:"requestNumber"`
	AssetName         string             `json:"assetName"`
	AssignedTo        string             `json:"assignedTo,omitempty"`
	AssignedToName    string             `json:"assignedToName,omitempty"`
	ScheduledDate     *time.Time         `json:"scheduledDate,omitempty"`
	EstimatedDuration float64            `json:"estimatedDuration,omitempty"`
	Status            models.Status      `json:"status"`
	Priority          models.Priority    `json:"priority"`
	Type              models.RequestType `json:"type"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// TeamScheduleResponse is the team-schedule payload.
type TeamScheduleResponse struct {
	Team struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		MemberCount int    `json:"memberCount"`
	} `json:"team"`
	Schedule []ScheduleItem `json:"schedule"`
}

// TeamSchedule handles GET /api/calendar/team/{teamId}: each member's
// direct assignments plus team-level assignments that are still active
// work, sorted by effective date.
func (h *CalendarHandler) TeamSchedule(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamId")
	team, err := h.collections.Teams.FindTeamByID(r.Context(), teamID)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "team_schedule", apperr.NotFoundf("team not found"))
		} else {
			writeError(w, r, "team_schedule", apperr.Internalf(err, "failed to fetch team schedule"))
		}
		return
	}

	members, err := h.collections.Users.FindUsers(r.Context(), bson.M{"team_id": teamID})
	if err != nil {
		writeError(w, r, "team_schedule", apperr.Internalf(err, "failed to fetch team schedule"))
		return
	}
	memberNames := make(map[string]string, len(members))
	for _, member := range members {
		memberNames[member.ID.Hex()] = member.Name
	}

	activeStatuses := bson.M{"$in": []string{
		string(models.StatusAssigned),
		string(models.StatusInProgress),
		string(models.StatusOnHold),
	}}

	seen := map[string]bool{}
	items := []ScheduleItem{}
	appendRequests := func(requests []models.MaintenanceRequest) {
		for i := range requests {
			req := &requests[i]
			id := req.ID.Hex()
			if seen[id] {
				continue
			}
			seen[id] = true
			items = append(items, ScheduleItem{
				ID:                id,
				RequestNumber:     req.RequestNumber,
				AssetName:         h.assetName(r, req),
				AssignedTo:        req.AssignedTo,
				AssignedToName:    memberNames[req.AssignedTo],
				ScheduledDate:     req.ScheduledDate,
				EstimatedDuration: req.EstimatedDuration,
				Status:            req.Status,
				Priority:          req.Priority,
				Type:              req.Type,
				CreatedAt:         req.CreatedAt,
			})
		}
	}

	for memberID := range memberNames {
		direct, err := h.collections.Requests.FindRequests(r.Context(), bson.M{
			"assigned_to": memberID,
			"status":      activeStatuses,
		})
		if err != nil {
			writeError(w, r, "team_schedule", apperr.Internalf(err, "failed to fetch team schedule"))
			return
		}
		appendRequests(direct)
	}

	teamAssigned, err := h.collections.Requests.FindRequests(r.Context(), bson.M{
		"assigned_team_id": teamID,
		"status":           activeStatuses,
	})
	if err != nil {
		writeError(w, r, "team_schedule", apperr.Internalf(err, "failed to fetch team schedule"))
		return
	}
	appendRequests(teamAssigned)

	sort.SliceStable(items, func(i, j int) bool {
		iDate, jDate := items[i].CreatedAt, items[j].CreatedAt
		if items[i].ScheduledDate != nil {
			iDate = *items[i].ScheduledDate
		}
		if items[j].ScheduledDate != nil {
			jDate = *items[j].ScheduledDate
		}
		return iDate.Before(jDate)
	})

	response := TeamScheduleResponse{Schedule: items}
	response.Team.ID = teamID
	response.Team.Name = team.Name
	response.Team.MemberCount = len(members)
	writeJSON(w, http.StatusOK, response)
}

// Schedule handles POST /api/calendar/schedule/{requestId}: sets or moves a
// request's scheduled slot.
func (h *CalendarHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduledDate     string   `json:"scheduledDate"`
		ScheduledTime     string   `json:"scheduledTime"`
		EstimatedDuration *float64 `json:"estimatedDuration"`
		Notes             string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "schedule_request", apperr.Validationf("invalid JSON body"))
		return
	}
	if body.ScheduledDate == "" {
		writeError(w, r, "schedule_request", apperr.Validationf("scheduled date is required"))
		return
	}

	scheduled, err := parseDate(body.ScheduledDate)
	if err != nil {
		writeError(w, r, "schedule_request", apperr.Validationf("invalid scheduled date %q", body.ScheduledDate))
		return
	}
	if body.ScheduledTime != "" {
		clock, err := time.Parse("15:04", body.ScheduledTime)
		if err != nil {
			writeError(w, r, "schedule_request", apperr.Validationf("invalid scheduled time %q", body.ScheduledTime))
			return
		}
		scheduled = time.Date(scheduled.Year(), scheduled.Month(), scheduled.Day(),
			clock.Hour(), clock.Minute(), 0, 0, scheduled.Location())
	}

	requestID := r.PathValue("requestId")
	if _, err := h.collections.Requests.FindRequestByID(r.Context(), requestID); err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "schedule_request", apperr.NotFoundf("maintenance request not found"))
		} else {
			writeError(w, r, "schedule_request", apperr.Internalf(err, "failed to schedule request"))
		}
		return
	}

	fields := bson.M{
		"scheduled_date": scheduled,
		"schedule_notes": body.Notes,
	}
	if body.EstimatedDuration != nil {
		fields["estimated_duration"] = *body.EstimatedDuration
	}
	if err := h.collections.Requests.UpdateRequestFields(r.Context(), requestID, fields); err != nil {
		writeError(w, r, "schedule_request", apperr.Internalf(err, "failed to schedule request"))
		return
	}

	updated, err := h.collections.Requests.FindRequestByID(r.Context(), requestID)
	if err != nil {
		writeError(w, r, "schedule_request", apperr.Internalf(err, "failed to fetch scheduled request"))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CalendarStats is the scheduling rollup for the calendar view.
type CalendarStats struct {
	Total              int `json:"total"`
	Scheduled          int `json:"scheduled"`
	Unscheduled        int `json:"unscheduled"`
	Overdue            int `json:"overdue"`
	CompletedThisMonth int `json:"completedThisMonth"`
	UpcomingThisWeek   int `json:"upcomingThisWeek"`
}

// Stats handles GET /api/calendar/stats with an optional month+year filter
// for the completed count.
func (h *CalendarHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "calendar_stats", err)
		return
	}

	requests, err := fetchScopedRequests(r.Context(), h.collections.Requests, h.collections.Users, claims)
	if err != nil {
		writeError(w, r, "calendar_stats", apperr.Internalf(err, "failed to fetch calendar statistics"))
		return
	}

	now := time.Now()
	var monthStart, monthEnd time.Time
	query := r.URL.Query()
	if monthStr, yearStr := query.Get("month"), query.Get("year"); monthStr != "" && yearStr != "" {
		month, merr := strconv.Atoi(monthStr)
		year, yerr := strconv.Atoi(yearStr)
		if merr != nil || yerr != nil || month < 1 || month > 12 {
			writeError(w, r, "calendar_stats", apperr.Validationf("invalid month/year filter"))
			return
		}
		monthStart = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
		monthEnd = monthStart.AddDate(0, 1, 0)
	}

	weekFromNow := now.AddDate(0, 0, 7)
	result := CalendarStats{Total: len(requests)}
	for i := range requests {
		req := &requests[i]
		if req.ScheduledDate != nil {
			result.Scheduled++
			if req.ScheduledDate.Before(now) && !req.Status.IsTerminal() {
				result.Overdue++
			}
			if !req.ScheduledDate.Before(now) && !req.ScheduledDate.After(weekFromNow) {
				result.UpcomingThisWeek++
			}
		} else if !req.Status.IsTerminal() {
			result.Unscheduled++
		}
		if req.Status == models.StatusCompleted && req.CompletedAt != nil && !monthStart.IsZero() {
			if !req.CompletedAt.Before(monthStart) && req.CompletedAt.Before(monthEnd) {
				result.CompletedThisMonth++
			}
		}
	}

	writeJSON(w, http.StatusOK, result)
}
