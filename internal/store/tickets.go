// Package store holds the session-scoped in-memory caches: the ticket
// working set, the local history journal, and the reference-data cache.
// No transition validation happens here; the store is a dumb cache.
package store

import (
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-client/internal/domain"
)

type ticketEntry struct {
	ticket *domain.Ticket
	seq    uint64
}

// TicketStore is the single source of truth for the UI within a session.
// Writes carry a logical operation sequence number assigned when the
// originating network call was issued; a write that lost the race against
// a newer one for the same id is ignored, so stale responses arriving late
// never clobber fresher data.
type TicketStore struct {
	mu   sync.RWMutex
	byID map[string]ticketEntry
}

// NewTicketStore creates an empty store.
func NewTicketStore() *TicketStore {
	return &TicketStore{byID: make(map[string]ticketEntry)}
}

// Get returns a copy of the cached ticket, or nil when absent.
func (s *TicketStore) Get(id string) *domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.byID[id]
	if !ok {
		return nil
	}
	return entry.ticket.Clone()
}

// Upsert merges a ticket by id. Returns false when the stored record
// outranks seq and the write was dropped as stale.
func (s *TicketStore) Upsert(t *domain.Ticket, seq uint64) bool {
	if t == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[t.ID]; ok && existing.seq > seq {
		return false
	}
	s.byID[t.ID] = ticketEntry{ticket: t.Clone(), seq: seq}
	return true
}

// ReplaceAll swaps the working set for the given list, as after a list
// refresh. Records written by operations newer than seq survive the swap.
func (s *TicketStore) ReplaceAll(tickets []domain.Ticket, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]ticketEntry, len(tickets))
	for id, entry := range s.byID {
		if entry.seq > seq {
			next[id] = entry
		}
	}
	for i := range tickets {
		t := &tickets[i]
		if existing, ok := next[t.ID]; ok && existing.seq > seq {
			continue
		}
		next[t.ID] = ticketEntry{ticket: t.Clone(), seq: seq}
	}
	s.byID = next
}

// Remove deletes a ticket from the working set.
func (s *TicketStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Snapshot returns copies of every cached ticket, most recently written
// first. Display ordering beyond recency is the caller's concern.
func (s *TicketStore) Snapshot() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]ticketEntry, 0, len(s.byID))
	for _, entry := range s.byID {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].seq != entries[j].seq {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].ticket.ID < entries[j].ticket.ID
	})

	out := make([]domain.Ticket, 0, len(entries))
	for _, entry := range entries {
		out = append(out, *entry.ticket.Clone())
	}
	return out
}

// Len reports the working set size.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Clear empties the store, as on session close.
func (s *TicketStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]ticketEntry)
}
