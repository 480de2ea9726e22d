package domain

import "time"

// GrievanceStatus enumerates lifecycle states for grievances.
type GrievanceStatus string

const (
	StatusPending    GrievanceStatus = "pending"
	StatusInProgress GrievanceStatus = "in-progress"
	StatusResolved   GrievanceStatus = "resolved"
	StatusRejected   GrievanceStatus = "rejected"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []GrievanceStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s GrievanceStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// GrievancePriority enumerates urgency levels.
type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "low"
	PriorityMedium GrievancePriority = "medium"
	PriorityHigh   GrievancePriority = "high"
	PriorityUrgent GrievancePriority = "urgent"
)

// Priorities lists every valid priority.
var Priorities = []GrievancePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the known priorities.
func (p GrievancePriority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Complainant is the contact data of the person filing a grievance.
type Complainant struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Comment is a free-text remark on a grievance.
type Comment struct {
	Seq      int
	Text     string
	PostedBy string
	PostedAt time.Time
}

// TimelineEntry is one audit record of the grievance status history.
type TimelineEntry struct {
	Seq       int
	Status    GrievanceStatus
	UpdatedBy string
	UpdatedAt time.Time
	Comment   string
}

// Grievance is the ledger aggregate.
type Grievance struct {
	ID           string
	TicketID     string
	Complainant  Complainant
	DepartmentID string
	Subject      string
	Description  string
	Location     string
	Status       GrievanceStatus
	Priority     GrievancePriority
	Attachments  []string
	AssignedTo   *string
	FiledBy      string
	Comments     []Comment
	Timeline     []TimelineEntry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LastTimelineEntry returns the most recent timeline entry, if any.
func (g *Grievance) LastTimelineEntry() (TimelineEntry, bool) {
	if len(g.Timeline) == 0 {
		return TimelineEntry{}, false
	}
	return g.Timeline[len(g.Timeline)-1], true
}
