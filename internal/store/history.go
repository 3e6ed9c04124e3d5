package store

import (
	"sync"

	"github.com/spec-kit/helpdesk-client/internal/domain"
)

// HistoryJournal is the append-only local record of lifecycle operations
// accepted during this session. The authoritative history lives on the
// backend; the journal lets the UI show what just happened without a
// refetch. Entries are never mutated or deleted, only cleared wholesale
// when the session ends.
type HistoryJournal struct {
	mu       sync.Mutex
	byTicket map[string][]domain.HistoryEntry
}

// NewHistoryJournal creates an empty journal.
func NewHistoryJournal() *HistoryJournal {
	return &HistoryJournal{byTicket: make(map[string][]domain.HistoryEntry)}
}

// Append records an entry under its ticket.
func (j *HistoryJournal) Append(entry domain.HistoryEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byTicket[entry.TicketID] = append(j.byTicket[entry.TicketID], entry)
}

// Entries returns the journal for a ticket in append order.
func (j *HistoryJournal) Entries(ticketID string) []domain.HistoryEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	entries := j.byTicket[ticketID]
	out := make([]domain.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// Clear drops all entries, as on session close.
func (j *HistoryJournal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byTicket = make(map[string][]domain.HistoryEntry)
}
