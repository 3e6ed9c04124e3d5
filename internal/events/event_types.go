package events

import (
	"time"

	"github.com/spec-kit/helpdesk-client/internal/domain"
)

// EventType enumerates coordinator events. The UI subscribes to re-render
// from the store after each one.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketCancelled      EventType = "ticket_cancelled"
	EventTicketArchiveToggled EventType = "ticket_archive_toggled"
	EventTicketCommentAdded   EventType = "ticket_comment_added"
	EventTicketRated          EventType = "ticket_rated"
	EventRefDataLoaded        EventType = "reference_data_loaded"
)

// AllEventTypes lists every event type, for subscribers that want the
// whole stream.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketCancelled,
	EventTicketArchiveToggled,
	EventTicketCommentAdded,
	EventTicketRated,
	EventRefDataLoaded,
}

// Event is emitted by the coordinator after an accepted operation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Protocol string                `json:"protocol"`
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reopen    bool                `json:"reopen,omitempty"`
}

// CancelledPayload payload.
type CancelledPayload struct {
	Reason string `json:"reason"`
}

// ArchiveToggledPayload payload.
type ArchiveToggledPayload struct {
	Archived bool `json:"archived"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID string `json:"comment_id"`
	Internal  bool   `json:"internal"`
}

// RatedPayload payload.
type RatedPayload struct {
	Rating int `json:"rating"`
}

// RefDataLoadedPayload payload.
type RefDataLoadedPayload struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}
