package domain

import "time"

// HistoryAction captures what a history entry records.
type HistoryAction string

const (
	HistoryActionCreated       HistoryAction = "CREATED"
	HistoryActionStatusChanged HistoryAction = "STATUS_CHANGED"
	HistoryActionCancelled     HistoryAction = "CANCELLED"
	HistoryActionArchived      HistoryAction = "ARCHIVED"
	HistoryActionUnarchived    HistoryAction = "UNARCHIVED"
	HistoryActionRated         HistoryAction = "RATED"
)

// HistoryEntry is an immutable audit record, appended on every accepted
// lifecycle operation and never mutated or deleted.
type HistoryEntry struct {
	ID          string
	TicketID    string
	ActorID     string
	Action      HistoryAction
	PriorStatus *TicketStatus
	NewStatus   *TicketStatus
	Note        *string
	CreatedAt   time.Time
}
