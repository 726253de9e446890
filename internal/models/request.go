package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status represents the lifecycle state of a maintenance request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Priority represents the priority of a maintenance request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Urgency represents the requester's urgency assessment.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// RequestType categorizes the kind of work requested.
type RequestType string

const (
	TypeCorrective  RequestType = "corrective"
	TypePreventive  RequestType = "preventive"
	TypeRepair      RequestType = "repair"
	TypeMaintenance RequestType = "maintenance"
	TypeInspection  RequestType = "inspection"
	TypeUpgrade     RequestType = "upgrade"
	TypeReplacement RequestType = "replacement"
)

// validTransitions is the status-transition table. Completed and cancelled
// are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusOnHold, StatusCompleted, StatusCancelled},
	StatusOnHold:     {StatusInProgress, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether a status change from s to target is
// permitted by the transition table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValidStatus checks if a status is one of the canonical values.
func IsValidStatus(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}

// NormalizeStatus converts hyphenated legacy spellings ("in-progress",
// "on-hold") to the canonical underscore form. Normalization happens only at
// the system boundary; everything past it works with canonical values.
func NormalizeStatus(s string) Status {
	return Status(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
}

// IsValidPriority checks if a priority is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// IsValidUrgency checks if an urgency is valid.
func IsValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	default:
		return false
	}
}

// IsValidRequestType checks if a request type is valid.
func IsValidRequestType(t RequestType) bool {
	switch t {
	case TypeCorrective, TypePreventive, TypeRepair, TypeMaintenance,
		TypeInspection, TypeUpgrade, TypeReplacement:
		return true
	default:
		return false
	}
}

// Comment is an append-only entry on a maintenance request.
type Comment struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	UserName  string    `bson:"user_name" json:"userName"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// MaintenanceRequest represents a maintenance request filed against an asset.
type MaintenanceRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestNumber     string             `bson:"request_number" json:"requestNumber"`
	AssetID           string             `bson:"asset_id" json:"assetId"`
	AssetName         string             `bson:"asset_name,omitempty" json:"assetName,omitempty"`
	Type              RequestType        `bson:"type" json:"type"`
	Priority          Priority           `bson:"priority" json:"priority"`
	Urgency           Urgency            `bson:"urgency" json:"urgency"`
	Description       string             `bson:"description" json:"description"`
	Status            Status             `bson:"status" json:"status"`
	RequestedBy       string             `bson:"requested_by" json:"requestedBy"`
	CreatedBy         string             `bson:"created_by" json:"createdBy"`
	RequesterName     string             `bson:"requester_name,omitempty" json:"requesterName,omitempty"`
	RequesterEmail    string             `bson:"requester_email,omitempty" json:"requesterEmail,omitempty"`
	AssignedTo        string             `bson:"assigned_to,omitempty" json:"assignedTo,omitempty"`
	AssignedTeamID    string             `bson:"assigned_team_id,omitempty" json:"assignedTeamId,omitempty"`
	AssignedAt        *time.Time         `bson:"assigned_at,omitempty" json:"assignedAt,omitempty"`
	Comments          []Comment          `bson:"comments" json:"comments"`
	ScheduledDate     *time.Time         `bson:"scheduled_date,omitempty" json:"scheduledDate,omitempty"`
	DueDate           *time.Time         `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	EstimatedDuration float64            `bson:"estimated_duration,omitempty" json:"estimatedDuration,omitempty"`
	ScheduleNotes     string             `bson:"schedule_notes,omitempty" json:"scheduleNotes,omitempty"`
	CompletedAt       *time.Time         `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CompletionNotes   string             `bson:"completion_notes,omitempty" json:"completionNotes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the request counts as active work
// (pending, assigned or in progress).
func (r *MaintenanceRequest) IsActive() bool {
	switch r.Status {
	case StatusPending, StatusAssigned, StatusInProgress:
		return true
	default:
		return false
	}
}

// EffectiveDate is the date a request occupies on the calendar: the scheduled
// date when one exists, otherwise the creation date.
func (r *MaintenanceRequest) EffectiveDate() time.Time {
	if r.ScheduledDate != nil {
		return *r.ScheduledDate
	}
	return r.CreatedAt
}

// CreateRequestInput is the payload for creating a maintenance request.
type CreateRequestInput struct {
	AssetID     string      `json:"assetId"`
	Type        RequestType `json:"type"`
	Priority    Priority    `json:"priority"`
	Urgency     Urgency     `json:"urgency"`
	Description string      `json:"description"`
	DueDate     *time.Time  `json:"dueDate"`
}

// RequestUpdate is the typed partial-update payload for a maintenance
// request. Pointer fields distinguish "absent" from "set to zero value".
type RequestUpdate struct {
	Status            *string      `json:"status"`
	AssignedTo        *string      `json:"assignedTo"`
	AssignedTeamID    *string      `json:"assignedTeamId"`
	Priority          *Priority    `json:"priority"`
	Urgency           *Urgency     `json:"urgency"`
	Type              *RequestType `json:"type"`
	Description       *string      `json:"description"`
	ScheduledDate     *time.Time   `json:"scheduledDate"`
	DueDate           *time.Time   `json:"dueDate"`
	EstimatedDuration *float64     `json:"estimatedDuration"`
	ScheduleNotes     *string      `json:"scheduleNotes"`
	CompletionNotes   *string      `json:"completionNotes"`
}

// RequestDetail is a maintenance request decorated with denormalized
// references for list and detail responses.
type RequestDetail struct {
	MaintenanceRequest
	Asset              *Asset   `json:"asset,omitempty"`
	Requester          *UserRef `json:"requester,omitempty"`
	Technician         *UserRef `json:"technician,omitempty"`
	TeamName           string   `json:"teamName,omitempty"`
	TeamSpecialization string   `json:"teamSpecialization,omitempty"`
}
