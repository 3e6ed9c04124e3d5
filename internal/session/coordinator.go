// Package session holds the per-session context object and the ticket
// lifecycle coordinator: the component that mediates between UI intents,
// the lifecycle state machine, the in-memory caches, and the remote
// service.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/events"
	"github.com/spec-kit/helpdesk-client/internal/lifecycle"
	"github.com/spec-kit/helpdesk-client/internal/observability"
	"github.com/spec-kit/helpdesk-client/internal/remote"
	"github.com/spec-kit/helpdesk-client/internal/store"
	"github.com/spec-kit/helpdesk-client/pkg/util"
)

// TransitionInput carries the side fields a status change may require.
type TransitionInput struct {
	Resolution   string
	TechnicianID *string
	Note         string
}

// Coordinator orchestrates fetch-or-serve-from-cache, remote mutations,
// and cache reconciliation. Every status change goes through
// ApplyTransition; nothing else may write status.
type Coordinator struct {
	remote     remote.Service
	store      *store.TicketStore
	journal    *store.HistoryJournal
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	seq atomic.Uint64

	errMu   sync.Mutex
	lastErr error

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// CoordinatorDependencies bundles collaborators.
type CoordinatorDependencies struct {
	Remote     remote.Service
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewCoordinator constructs the coordinator with a fresh store.
func NewCoordinator(deps CoordinatorDependencies) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		remote:     deps.Remote,
		store:      store.NewTicketStore(),
		journal:    store.NewHistoryJournal(),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// List fetches tickets scoped by actor role and replaces the store's
// working set. Requesters only ever see their own tickets. On failure the
// store keeps its last-known-good contents.
func (c *Coordinator) List(ctx context.Context, actor domain.Actor, filter domain.TicketFilter) ([]domain.Ticket, error) {
	if actor.Role == domain.RoleRequester {
		requesterID := actor.ID
		filter.RequesterID = &requesterID
	}
	seq := c.nextSeq()
	tickets, err := c.remote.ListTickets(ctx, filter)
	if err != nil {
		return nil, c.fail("list", err)
	}
	c.store.ReplaceAll(tickets, seq)
	c.metrics.RecordOperation("list", nil)
	return tickets, nil
}

// Get serves from the store when possible, otherwise fetches remotely and
// caches the result. A ticket missing on the backend yields (nil, nil),
// not an error.
func (c *Coordinator) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	if t := c.store.Get(id); t != nil {
		c.metrics.RecordCacheHit("tickets")
		return t, nil
	}
	c.metrics.RecordCacheMiss("tickets")

	seq := c.nextSeq()
	t, err := c.remote.GetTicket(ctx, id)
	if err != nil {
		if util.IsCode(err, util.CodeNotFound) {
			return nil, nil
		}
		return nil, c.fail("get", err)
	}
	c.store.Upsert(t, seq)
	c.metrics.RecordOperation("get", nil)
	return t.Clone(), nil
}

// Create validates the draft locally, submits it, and caches the returned
// record. The backend assigns id and protocol and forces status to Open.
func (c *Coordinator) Create(ctx context.Context, actor domain.Actor, draft domain.TicketDraft) (*domain.Ticket, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, c.fail("create", util.NewMissingRequiredField("title"))
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, c.fail("create", util.NewMissingRequiredField("description"))
	}
	draft.RequesterID = actor.ID

	seq := c.nextSeq()
	created, err := c.remote.CreateTicket(ctx, draft)
	if err != nil {
		return nil, c.fail("create", err)
	}
	c.store.Upsert(created, seq)
	openStatus := created.Status
	c.appendHistory(created.ID, actor.ID, domain.HistoryActionCreated, nil, &openStatus, nil)
	c.publish(ctx, events.EventTicketCreated, created.ID, actor.ID, events.TicketCreatedPayload{
		Protocol: created.Protocol,
		Title:    created.Title,
		Priority: created.Priority,
	})
	c.metrics.RecordOperation("create", nil)
	return created.Clone(), nil
}

// ApplyTransition is the only path by which status may change. Rejections
// happen locally, before any network call; accepted transitions issue the
// remote mutation, append a history entry, and reconcile the store.
// Mutations for the same ticket id serialize.
func (c *Coordinator) ApplyTransition(ctx context.Context, id string, requested domain.TicketStatus, actor domain.Actor, input TransitionInput) (*domain.Ticket, error) {
	unlock := c.lockTicket(id)
	defer unlock()

	const op = "apply_transition"
	current, err := c.currentTicket(ctx, id)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if current.Cancelled {
		return nil, c.fail(op, util.NewIllegalTransition(string(current.Status), string(requested)))
	}

	plan, err := lifecycle.ValidateTransition(current.Status, requested, actor.Role)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if err := plan.RequireResolution(input.Resolution); err != nil {
		return nil, c.fail(op, err)
	}

	patch := domain.TicketPatch{Status: &requested}
	if plan.NeedsResolution {
		resolution := strings.TrimSpace(input.Resolution)
		patch.Resolution = &resolution
	}
	if input.TechnicianID != nil {
		patch.TechnicianID = input.TechnicianID
	}

	seq := c.nextSeq()
	updated, err := c.remote.UpdateTicket(ctx, id, patch, actor.ID)
	if err != nil {
		return nil, c.fail(op, err)
	}
	c.store.Upsert(updated, seq)

	var note *string
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note = &trimmed
	}
	c.appendHistory(id, actor.ID, domain.HistoryActionStatusChanged, &plan.From, &plan.To, note)
	c.publish(ctx, events.EventTicketStatusChanged, id, actor.ID, events.StatusChangedPayload{
		OldStatus: plan.From,
		NewStatus: plan.To,
		Reopen:    plan.Reopen,
	})
	c.metrics.RecordOperation(op, nil)
	c.logger.Info("transition applied",
		zap.String("ticket_id", id),
		zap.String("from", string(plan.From)),
		zap.String("to", string(plan.To)),
	)
	return updated.Clone(), nil
}

// Cancel soft-removes a ticket. Technician/admin only; the reason is
// mandatory.
func (c *Coordinator) Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Ticket, error) {
	unlock := c.lockTicket(id)
	defer unlock()

	const op = "cancel"
	current, err := c.currentTicket(ctx, id)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if err := lifecycle.ValidateCancel(current, actor.Role, reason); err != nil {
		return nil, c.fail(op, err)
	}

	seq := c.nextSeq()
	updated, err := c.remote.CancelTicket(ctx, id, actor.ID, reason)
	if err != nil {
		return nil, c.fail(op, err)
	}
	c.store.Upsert(updated, seq)

	trimmed := strings.TrimSpace(reason)
	c.appendHistory(id, actor.ID, domain.HistoryActionCancelled, &current.Status, nil, &trimmed)
	c.publish(ctx, events.EventTicketCancelled, id, actor.ID, events.CancelledPayload{Reason: trimmed})
	c.metrics.RecordOperation(op, nil)
	return updated.Clone(), nil
}

// Archive sets the archived flag; the flag is orthogonal to status.
func (c *Coordinator) Archive(ctx context.Context, id string, actor domain.Actor) (*domain.Ticket, error) {
	return c.toggleArchive(ctx, id, actor, true)
}

// Unarchive clears the archived flag.
func (c *Coordinator) Unarchive(ctx context.Context, id string, actor domain.Actor) (*domain.Ticket, error) {
	return c.toggleArchive(ctx, id, actor, false)
}

func (c *Coordinator) toggleArchive(ctx context.Context, id string, actor domain.Actor, archived bool) (*domain.Ticket, error) {
	unlock := c.lockTicket(id)
	defer unlock()

	op := "archive"
	action := domain.HistoryActionArchived
	call := c.remote.ArchiveTicket
	if !archived {
		op = "unarchive"
		action = domain.HistoryActionUnarchived
		call = c.remote.UnarchiveTicket
	}

	if _, err := c.currentTicket(ctx, id); err != nil {
		return nil, c.fail(op, err)
	}
	if err := lifecycle.ValidateArchiveToggle(actor.Role); err != nil {
		return nil, c.fail(op, err)
	}

	seq := c.nextSeq()
	updated, err := call(ctx, id, actor.ID)
	if err != nil {
		return nil, c.fail(op, err)
	}
	c.store.Upsert(updated, seq)
	c.appendHistory(id, actor.ID, action, nil, nil, nil)
	c.publish(ctx, events.EventTicketArchiveToggled, id, actor.ID, events.ArchiveToggledPayload{Archived: archived})
	c.metrics.RecordOperation(op, nil)
	return updated.Clone(), nil
}

// Delete permanently removes a ticket. Admin only, irreversible; normal
// removal is Cancel.
func (c *Coordinator) Delete(ctx context.Context, id string, actor domain.Actor) error {
	unlock := c.lockTicket(id)
	defer unlock()

	const op = "delete"
	if actor.Role != domain.RoleAdministrator {
		return c.fail(op, util.NewUnauthorized("only administrators may delete tickets"))
	}
	if err := c.remote.DeleteTicket(ctx, id, actor.ID); err != nil {
		return c.fail(op, err)
	}
	c.store.Remove(id)
	c.metrics.RecordOperation(op, nil)
	return nil
}

// AddComment appends a comment. Any actor associated with the ticket may
// add a public comment; only technician/admin may mark one internal.
func (c *Coordinator) AddComment(ctx context.Context, ticketID string, author domain.Actor, body string, internal bool) (*domain.Comment, error) {
	const op = "add_comment"
	if strings.TrimSpace(body) == "" {
		return nil, c.fail(op, util.NewMissingRequiredField("comment"))
	}
	if internal && !author.Role.CanManageTickets() {
		return nil, c.fail(op, util.NewUnauthorized("role may not add internal comments"))
	}

	ticket, err := c.currentTicket(ctx, ticketID)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if !author.Role.CanManageTickets() && ticket.RequesterID != author.ID {
		return nil, c.fail(op, util.NewUnauthorized("actor is not associated with the ticket"))
	}

	created, err := c.remote.CreateComment(ctx, domain.CommentDraft{
		TicketID: ticketID,
		AuthorID: author.ID,
		Body:     strings.TrimSpace(body),
		Internal: internal,
	})
	if err != nil {
		return nil, c.fail(op, err)
	}
	c.publish(ctx, events.EventTicketCommentAdded, ticketID, author.ID, events.CommentAddedPayload{
		CommentID: created.ID,
		Internal:  created.Internal,
	})
	c.metrics.RecordOperation(op, nil)
	return created, nil
}

// Comments fetches a ticket's comments, hiding internal ones from
// requester-role readers.
func (c *Coordinator) Comments(ctx context.Context, ticketID string, reader domain.Actor) ([]domain.Comment, error) {
	comments, err := c.remote.ListComments(ctx, ticketID)
	if err != nil {
		return nil, c.fail("comments", err)
	}
	if reader.Role.CanManageTickets() {
		return comments, nil
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.Internal {
			continue
		}
		visible = append(visible, comment)
	}
	return visible, nil
}

// Rate sets a 1-5 rating. Only the ticket's requester, only on resolved
// or closed tickets.
func (c *Coordinator) Rate(ctx context.Context, id string, actor domain.Actor, rating int) (*domain.Ticket, error) {
	unlock := c.lockTicket(id)
	defer unlock()

	const op = "rate"
	current, err := c.currentTicket(ctx, id)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if err := lifecycle.ValidateRating(current, actor, rating); err != nil {
		return nil, c.fail(op, err)
	}

	seq := c.nextSeq()
	updated, err := c.remote.UpdateTicket(ctx, id, domain.TicketPatch{Rating: &rating}, actor.ID)
	if err != nil {
		return nil, c.fail(op, err)
	}
	c.store.Upsert(updated, seq)
	c.appendHistory(id, actor.ID, domain.HistoryActionRated, nil, nil, nil)
	c.publish(ctx, events.EventTicketRated, id, actor.ID, events.RatedPayload{Rating: rating})
	c.metrics.RecordOperation(op, nil)
	return updated.Clone(), nil
}

// History fetches the authoritative audit trail from the backend.
func (c *Coordinator) History(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	entries, err := c.remote.ListHistory(ctx, ticketID)
	if err != nil {
		return nil, c.fail("history", err)
	}
	return entries, nil
}

// RecentHistory returns the local journal of operations accepted this
// session, without a network call.
func (c *Coordinator) RecentHistory(ticketID string) []domain.HistoryEntry {
	return c.journal.Entries(ticketID)
}

// Tickets returns a snapshot of the store, most recently written first.
func (c *Coordinator) Tickets() []domain.Ticket {
	return c.store.Snapshot()
}

// LastError returns the last operation failure, if any.
func (c *Coordinator) LastError() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

// ClearError resets the error slot.
func (c *Coordinator) ClearError() {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.lastErr = nil
}

// reset drops all session-scoped state.
func (c *Coordinator) reset() {
	c.store.Clear()
	c.journal.Clear()
	c.ClearError()
}

// currentTicket resolves a ticket from the store or the backend. Used by
// mutating operations, so a missing ticket is an error here.
func (c *Coordinator) currentTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if t := c.store.Get(id); t != nil {
		return t, nil
	}
	seq := c.nextSeq()
	t, err := c.remote.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store.Upsert(t, seq)
	return t.Clone(), nil
}

// lockTicket serializes mutating operations per ticket id. Reads stay
// unordered.
func (c *Coordinator) lockTicket(id string) func() {
	c.locksMu.Lock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	c.locksMu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func (c *Coordinator) nextSeq() uint64 {
	return c.seq.Add(1)
}

func (c *Coordinator) fail(op string, err error) error {
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
	c.metrics.RecordOperation(op, err)
	c.logger.Warn("operation failed",
		zap.String("operation", op),
		zap.String("code", util.CodeOf(err)),
		zap.Error(err),
	)
	return err
}

func (c *Coordinator) appendHistory(ticketID, actorID string, action domain.HistoryAction, prior, next *domain.TicketStatus, note *string) {
	c.journal.Append(domain.HistoryEntry{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		ActorID:     actorID,
		Action:      action,
		PriorStatus: prior,
		NewStatus:   next,
		Note:        note,
		CreatedAt:   time.Now(),
	})
}

func (c *Coordinator) publish(ctx context.Context, eventType events.EventType, ticketID, actorID string, payload any) {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
