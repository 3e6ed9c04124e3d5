package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Cancelled and
// archived are orthogonal flags on Ticket, not statuses.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusWaiting    TicketStatus = "WAITING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every lifecycle state.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaiting,
	TicketStatusResolved,
	TicketStatusClosed,
}

// TicketPriority enumerates how important a ticket is to the requester.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketUrgency enumerates how quickly a ticket needs attention.
type TicketUrgency string

const (
	TicketUrgencyNotUrgent  TicketUrgency = "NOT_URGENT"
	TicketUrgencyNormal     TicketUrgency = "NORMAL"
	TicketUrgencyUrgent     TicketUrgency = "URGENT"
	TicketUrgencyVeryUrgent TicketUrgency = "VERY_URGENT"
)

// Ticket is the aggregate for support requests. Protocol and RequesterID
// are assigned at creation and never change afterwards. Rating is settable
// only on resolved or closed tickets, and only by the requester.
type Ticket struct {
	ID            string
	Protocol      string
	RequesterID   string
	CategoryID    *string
	Title         string
	Description   string
	Priority      TicketPriority
	Urgency       *TicketUrgency
	Status        TicketStatus
	TechnicianID  *string
	Resolution    *string
	InternalNotes *string
	Rating        *int
	Cancelled     bool
	Archived      bool
	OpenedAt      time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
}

// Clone returns a deep copy, so cached records cannot be mutated through
// shared pointers.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	out.CategoryID = clonePtr(t.CategoryID)
	out.Urgency = clonePtr(t.Urgency)
	out.TechnicianID = clonePtr(t.TechnicianID)
	out.Resolution = clonePtr(t.Resolution)
	out.InternalNotes = clonePtr(t.InternalNotes)
	out.Rating = clonePtr(t.Rating)
	out.ResolvedAt = clonePtr(t.ResolvedAt)
	return &out
}

// Removed reports whether the ticket left the active working set through
// soft removal.
func (t *Ticket) Removed() bool {
	return t.Cancelled
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TicketDraft describes ticket creation payload.
type TicketDraft struct {
	RequesterID  string
	CategoryID   *string
	Title        string
	Description  string
	Priority     TicketPriority
	Urgency      *TicketUrgency
	TechnicianID *string
}

// TicketPatch carries partial updates; nil fields are untouched.
type TicketPatch struct {
	Title         *string
	Description   *string
	CategoryID    *string
	Priority      *TicketPriority
	Urgency       *TicketUrgency
	Status        *TicketStatus
	TechnicianID  *string
	Resolution    *string
	InternalNotes *string
	Rating        *int
}

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses         []TicketStatus
	RequesterID      *string
	TechnicianID     *string
	IncludeCancelled bool
	IncludeArchived  bool
	Limit            int
	Offset           int
}
