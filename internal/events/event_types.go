package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGrievanceCreated       EventType = "grievance_created"
	EventGrievanceStatusChanged EventType = "grievance_status_changed"
	EventGrievanceAssigned      EventType = "grievance_assigned"
	EventGrievanceCommentAdded  EventType = "grievance_comment_added"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventGrievanceCreated,
	EventGrievanceStatusChanged,
	EventGrievanceAssigned,
	EventGrievanceCommentAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	GrievanceID string      `json:"grievanceId"`
	TicketID    string      `json:"ticketId"`
	ActorID     string      `json:"actorId"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// GrievanceCreatedPayload payload.
type GrievanceCreatedPayload struct {
	DepartmentID string                   `json:"departmentId"`
	Priority     domain.GrievancePriority `json:"priority"`
	Subject      string                   `json:"subject"`
}

// GrievanceStatusChangedPayload payload.
type GrievanceStatusChangedPayload struct {
	OldStatus domain.GrievanceStatus `json:"oldStatus"`
	NewStatus domain.GrievanceStatus `json:"newStatus"`
	Comment   string                 `json:"comment,omitempty"`
}

// GrievanceAssignedPayload payload.
type GrievanceAssignedPayload struct {
	AssigneeID   string `json:"assigneeId"`
	AssigneeName string `json:"assigneeName"`
}

// GrievanceCommentAddedPayload payload.
type GrievanceCommentAddedPayload struct {
	Seq         int    `json:"seq"`
	BodyPreview string `json:"bodyPreview"`
}
