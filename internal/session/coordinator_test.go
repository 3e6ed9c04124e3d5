package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/events"
	"github.com/spec-kit/helpdesk-client/internal/observability"
	"github.com/spec-kit/helpdesk-client/internal/remote"
	"github.com/spec-kit/helpdesk-client/pkg/util"
)

// fakeRemote is an in-memory backend double that counts calls and can be
// made to fail or block.
type fakeRemote struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	comments map[string][]domain.Comment
	history  map[string][]domain.HistoryEntry
	nextID   int

	listCalls   atomic.Int64
	getCalls    atomic.Int64
	updateCalls atomic.Int64

	failList   error
	failUpdate error
	updateGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tickets:  make(map[string]*domain.Ticket),
		comments: make(map[string][]domain.Comment),
		history:  make(map[string][]domain.HistoryEntry),
	}
}

func (f *fakeRemote) seed(t *domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[t.ID] = t.Clone()
}

func (f *fakeRemote) Login(ctx context.Context, name, password string) (*remote.LoginResult, error) {
	return &remote.LoginResult{AccessToken: "token", ActorID: "u1", Name: name, Role: domain.RoleRequester}, nil
}

func (f *fakeRemote) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	f.listCalls.Add(1)
	if f.failList != nil {
		return nil, f.failList
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, t := range f.tickets {
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if t.Cancelled && !filter.IncludeCancelled {
			continue
		}
		if t.Archived && !filter.IncludeArchived {
			continue
		}
		out = append(out, *t.Clone())
	}
	return out, nil
}

func (f *fakeRemote) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	f.getCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, util.NewNotFound("ticket", nil)
	}
	return t.Clone(), nil
}

func (f *fakeRemote) CreateTicket(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now()
	t := &domain.Ticket{
		ID:          strconv.Itoa(f.nextID),
		Protocol:    fmt.Sprintf("HD-%04d", f.nextID),
		RequesterID: draft.RequesterID,
		CategoryID:  draft.CategoryID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      domain.TicketStatusOpen,
		OpenedAt:    now,
		UpdatedAt:   now,
	}
	f.tickets[t.ID] = t
	return t.Clone(), nil
}

func (f *fakeRemote) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch, actorID string) (*domain.Ticket, error) {
	f.updateCalls.Add(1)
	if f.updateGate != nil {
		<-f.updateGate
	}
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, util.NewNotFound("ticket", nil)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Resolution != nil {
		t.Resolution = patch.Resolution
	}
	if patch.TechnicianID != nil {
		t.TechnicianID = patch.TechnicianID
	}
	if patch.Rating != nil {
		t.Rating = patch.Rating
	}
	t.UpdatedAt = time.Now()
	return t.Clone(), nil
}

func (f *fakeRemote) CancelTicket(ctx context.Context, id, actorID, reason string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, util.NewNotFound("ticket", nil)
	}
	t.Cancelled = true
	t.UpdatedAt = time.Now()
	return t.Clone(), nil
}

func (f *fakeRemote) ArchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error) {
	return f.setArchived(id, true)
}

func (f *fakeRemote) UnarchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error) {
	return f.setArchived(id, false)
}

func (f *fakeRemote) setArchived(id string, archived bool) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, util.NewNotFound("ticket", nil)
	}
	t.Archived = archived
	t.UpdatedAt = time.Now()
	return t.Clone(), nil
}

func (f *fakeRemote) DeleteTicket(ctx context.Context, id, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return util.NewNotFound("ticket", nil)
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeRemote) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Comment(nil), f.comments[ticketID]...), nil
}

func (f *fakeRemote) CreateComment(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	comment := domain.Comment{
		ID:        "c" + strconv.Itoa(f.nextID),
		TicketID:  draft.TicketID,
		AuthorID:  draft.AuthorID,
		Body:      draft.Body,
		Internal:  draft.Internal,
		CreatedAt: time.Now(),
	}
	f.comments[draft.TicketID] = append(f.comments[draft.TicketID], comment)
	return &comment, nil
}

func (f *fakeRemote) ListHistory(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HistoryEntry(nil), f.history[ticketID]...), nil
}

func (f *fakeRemote) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return nil, nil
}

func (f *fakeRemote) ListTechnicians(ctx context.Context) ([]domain.Actor, error) {
	return nil, nil
}

var (
	technician = domain.Actor{ID: "tech1", Name: "Dana", Role: domain.RoleTechnician, Active: true}
	admin      = domain.Actor{ID: "adm1", Name: "Sam", Role: domain.RoleAdministrator, Active: true}
	requester  = domain.Actor{ID: "req1", Name: "Alex", Role: domain.RoleRequester, Active: true}
)

func newTestCoordinator(t *testing.T, backend *fakeRemote) *Coordinator {
	t.Helper()
	return NewCoordinator(CoordinatorDependencies{
		Remote:     backend,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
	})
}

func openTicket(id string) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		Protocol:    "HD-" + id,
		RequesterID: requester.ID,
		Title:       "printer jam",
		Description: "the printer on floor 2 is jammed",
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusOpen,
	}
}

func TestApplyTransition_Accepted(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	updated, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", updated.Status)
	}
	if cached := c.Tickets(); len(cached) != 1 || cached[0].Status != domain.TicketStatusInProgress {
		t.Errorf("store not reconciled: %+v", cached)
	}

	journal := c.RecentHistory("t1")
	if len(journal) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(journal))
	}
	entry := journal[0]
	if entry.Action != domain.HistoryActionStatusChanged {
		t.Errorf("action = %s", entry.Action)
	}
	if entry.PriorStatus == nil || *entry.PriorStatus != domain.TicketStatusOpen {
		t.Errorf("prior status = %v, want OPEN", entry.PriorStatus)
	}
	if entry.NewStatus == nil || *entry.NewStatus != domain.TicketStatusInProgress {
		t.Errorf("new status = %v, want IN_PROGRESS", entry.NewStatus)
	}
}

func TestApplyTransition_MissingResolutionRejectedLocally(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Status = domain.TicketStatusInProgress
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	// Warm the store so the rejection needs no network at all.
	if _, err := c.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	callsBefore := backend.updateCalls.Load()

	_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusResolved, technician, TransitionInput{Resolution: "  "})
	if !util.IsCode(err, util.CodeMissingRequiredField) {
		t.Fatalf("got %v, want MissingRequiredField", err)
	}
	if backend.updateCalls.Load() != callsBefore {
		t.Error("rejected transition reached the network")
	}
	if got := c.Tickets()[0].Status; got != domain.TicketStatusInProgress {
		t.Errorf("store mutated on rejection: %s", got)
	}
	if len(c.RecentHistory("t1")) != 0 {
		t.Error("journal entry appended for a rejected transition")
	}
	if c.LastError() == nil {
		t.Error("error slot not set")
	}
	c.ClearError()
	if c.LastError() != nil {
		t.Error("error slot not cleared")
	}
}

func TestApplyTransition_RepeatEvaluatedFromNewStatus(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Status = domain.TicketStatusInProgress
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	input := TransitionInput{Resolution: "rebooted the switch"}
	if _, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusResolved, technician, input); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	// The second identical request is evaluated from RESOLVED, and
	// RESOLVED -> RESOLVED is not in the table.
	_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusResolved, technician, input)
	if !util.IsCode(err, util.CodeIllegalTransition) {
		t.Fatalf("second apply: got %v, want IllegalTransition", err)
	}
}

func TestApplyTransition_RequesterUnauthorized(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Status = domain.TicketStatusResolved
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusClosed, requester, TransitionInput{})
	if !util.IsCode(err, util.CodeUnauthorized) {
		t.Fatalf("got %v, want Unauthorized", err)
	}
	if backend.updateCalls.Load() != 0 {
		t.Error("unauthorized transition reached the network")
	}
}

func TestApplyTransition_CancelledTicketRejected(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Cancelled = true
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{})
	if !util.IsCode(err, util.CodeIllegalTransition) {
		t.Fatalf("got %v, want IllegalTransition", err)
	}
}

func TestApplyTransition_RemoteFailureLeavesStore(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	backend.failUpdate = util.NewConflict("modified concurrently", nil)

	_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{})
	if !util.IsCode(err, util.CodeConflict) {
		t.Fatalf("got %v, want Conflict", err)
	}
	if got := c.Tickets()[0].Status; got != domain.TicketStatusOpen {
		t.Errorf("store mutated on remote failure: %s", got)
	}
	if len(c.RecentHistory("t1")) != 0 {
		t.Error("journal entry appended for a failed mutation")
	}
}

func TestApplyTransition_SerializesPerTicket(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	backend.updateGate = make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{})
		firstDone <- err
	}()

	// Wait for the first mutation to reach the (blocked) backend.
	for backend.updateCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	secondDone := make(chan error, 1)
	go func() {
		_, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{})
		secondDone <- err
	}()

	// The second mutation must queue behind the first, not run
	// concurrently.
	time.Sleep(20 * time.Millisecond)
	if calls := backend.updateCalls.Load(); calls != 1 {
		t.Fatalf("second mutation issued while first in flight: %d calls", calls)
	}

	close(backend.updateGate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// The queued call re-validates from IN_PROGRESS, where another
	// IN_PROGRESS request is illegal.
	if err := <-secondDone; !util.IsCode(err, util.CodeIllegalTransition) {
		t.Fatalf("second transition: got %v, want IllegalTransition", err)
	}
	if calls := backend.updateCalls.Load(); calls != 1 {
		t.Errorf("expected exactly 1 remote update, got %d", calls)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	backend := newFakeRemote()
	c := newTestCoordinator(t, backend)

	created, err := c.Create(context.Background(), requester, domain.TicketDraft{
		Title:       "monitor flickers",
		Description: "external monitor flickers on wake",
		Priority:    domain.TicketPriorityHigh,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want OPEN", created.Status)
	}
	if created.RequesterID != requester.ID {
		t.Errorf("requester = %s", created.RequesterID)
	}
	if created.Protocol == "" {
		t.Error("protocol not assigned")
	}

	getCallsBefore := backend.getCalls.Load()
	got, err := c.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if backend.getCalls.Load() != getCallsBefore {
		t.Error("get after create hit the network instead of the store")
	}
	if got.ID != created.ID || got.Protocol != created.Protocol || got.Title != created.Title || got.Status != created.Status {
		t.Errorf("round trip mismatch: %+v vs %+v", got, created)
	}
}

func TestCreate_InvalidDraftNeverReachesNetwork(t *testing.T) {
	backend := newFakeRemote()
	c := newTestCoordinator(t, backend)

	_, err := c.Create(context.Background(), requester, domain.TicketDraft{Title: " ", Description: "x"})
	if !util.IsCode(err, util.CodeMissingRequiredField) {
		t.Fatalf("blank title: got %v", err)
	}
	_, err = c.Create(context.Background(), requester, domain.TicketDraft{Title: "x", Description: ""})
	if !util.IsCode(err, util.CodeMissingRequiredField) {
		t.Fatalf("blank description: got %v", err)
	}
	if len(c.Tickets()) != 0 {
		t.Error("store touched by rejected create")
	}
}

func TestGet_MissingTicketIsNotAnError(t *testing.T) {
	backend := newFakeRemote()
	c := newTestCoordinator(t, backend)

	got, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil ticket, got %+v", got)
	}
}

func TestList_ScopesRequesterAndReplacesStore(t *testing.T) {
	backend := newFakeRemote()
	mine := openTicket("t1")
	other := openTicket("t2")
	other.RequesterID = "someone-else"
	backend.seed(mine)
	backend.seed(other)
	c := newTestCoordinator(t, backend)

	tickets, err := c.List(context.Background(), requester, domain.TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" {
		t.Fatalf("requester scope leaked: %+v", tickets)
	}

	all, err := c.List(context.Background(), technician, domain.TicketFilter{})
	if err != nil {
		t.Fatalf("list as technician: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("technician should see all tickets, got %d", len(all))
	}
	if c.Tickets()[0].ID == "" || len(c.Tickets()) != 2 {
		t.Errorf("store not replaced: %+v", c.Tickets())
	}
}

func TestList_FailureKeepsLastKnownGood(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.List(context.Background(), technician, domain.TicketFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	backend.failList = util.NewTransport(fmt.Errorf("connection refused"))

	_, err := c.List(context.Background(), technician, domain.TicketFilter{})
	if !util.IsCode(err, util.CodeTransport) {
		t.Fatalf("got %v, want Transport", err)
	}
	if len(c.Tickets()) != 1 {
		t.Errorf("store lost last-known-good contents: %+v", c.Tickets())
	}
}

func TestCancel_RulesAndReconciliation(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.Cancel(context.Background(), "t1", requester, "why not"); !util.IsCode(err, util.CodeUnauthorized) {
		t.Fatalf("requester cancel: got %v", err)
	}
	if _, err := c.Cancel(context.Background(), "t1", technician, " "); !util.IsCode(err, util.CodeMissingRequiredField) {
		t.Fatalf("blank reason: got %v", err)
	}

	cancelled, err := c.Cancel(context.Background(), "t1", technician, "duplicate of HD-t0")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !cancelled.Cancelled {
		t.Error("cancelled flag not set")
	}
	if cancelled.Status != domain.TicketStatusOpen {
		t.Errorf("cancel changed status: %s", cancelled.Status)
	}

	journal := c.RecentHistory("t1")
	if len(journal) != 1 || journal[0].Action != domain.HistoryActionCancelled {
		t.Fatalf("unexpected journal %+v", journal)
	}
	if journal[0].Note == nil || *journal[0].Note != "duplicate of HD-t0" {
		t.Errorf("reason not journalled: %v", journal[0].Note)
	}
}

func TestArchiveToggle_OrthogonalToStatusAndCancelled(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Cancelled = true
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	archived, err := c.Archive(context.Background(), "t1", admin)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.Archived || !archived.Cancelled {
		t.Errorf("flags not orthogonal: %+v", archived)
	}

	unarchived, err := c.Unarchive(context.Background(), "t1", admin)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if unarchived.Archived {
		t.Error("archived flag still set")
	}
	if !unarchived.Cancelled {
		t.Error("unarchive cleared the cancelled flag")
	}

	if _, err := c.Archive(context.Background(), "t1", requester); !util.IsCode(err, util.CodeUnauthorized) {
		t.Errorf("requester archive: got %v", err)
	}
}

func TestRate_RequesterOnResolvedTicket(t *testing.T) {
	backend := newFakeRemote()
	ticket := openTicket("t1")
	ticket.Status = domain.TicketStatusResolved
	backend.seed(ticket)
	c := newTestCoordinator(t, backend)

	rated, err := c.Rate(context.Background(), "t1", requester, 5)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 {
		t.Errorf("rating not applied: %v", rated.Rating)
	}

	if _, err := c.Rate(context.Background(), "t1", technician, 4); !util.IsCode(err, util.CodeUnauthorized) {
		t.Errorf("non-requester rate: got %v", err)
	}
}

func TestAddComment_Gating(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.AddComment(context.Background(), "t1", requester, "any update?", false); err != nil {
		t.Fatalf("requester comment: %v", err)
	}
	if _, err := c.AddComment(context.Background(), "t1", requester, "secret", true); !util.IsCode(err, util.CodeUnauthorized) {
		t.Fatalf("requester internal comment: got %v", err)
	}
	if _, err := c.AddComment(context.Background(), "t1", technician, "vendor ticket opened", true); err != nil {
		t.Fatalf("technician internal comment: %v", err)
	}

	stranger := domain.Actor{ID: "other", Role: domain.RoleRequester}
	if _, err := c.AddComment(context.Background(), "t1", stranger, "me too", false); !util.IsCode(err, util.CodeUnauthorized) {
		t.Fatalf("unassociated requester: got %v", err)
	}

	if _, err := c.AddComment(context.Background(), "t1", requester, "   ", false); !util.IsCode(err, util.CodeMissingRequiredField) {
		t.Fatalf("blank comment: got %v", err)
	}
}

func TestComments_InternalHiddenFromRequester(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if _, err := c.AddComment(context.Background(), "t1", requester, "any update?", false); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := c.AddComment(context.Background(), "t1", technician, "waiting on vendor", true); err != nil {
		t.Fatalf("internal comment: %v", err)
	}

	visible, err := c.Comments(context.Background(), "t1", requester)
	if err != nil {
		t.Fatalf("comments as requester: %v", err)
	}
	if len(visible) != 1 || visible[0].Internal {
		t.Errorf("internal comment leaked to requester: %+v", visible)
	}

	all, err := c.Comments(context.Background(), "t1", technician)
	if err != nil {
		t.Fatalf("comments as technician: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("technician should see both comments, got %d", len(all))
	}
}

func TestDelete_AdminOnly(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))
	c := newTestCoordinator(t, backend)

	if err := c.Delete(context.Background(), "t1", technician); !util.IsCode(err, util.CodeUnauthorized) {
		t.Fatalf("technician delete: got %v", err)
	}
	if err := c.Delete(context.Background(), "t1", admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if got, err := c.Get(context.Background(), "t1"); err != nil || got != nil {
		t.Errorf("ticket survived delete: %+v %v", got, err)
	}
}

func TestMetricsAndRecorder(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	observability.NewEventRecorder(metrics, nil).Register(dispatcher)

	c := NewCoordinator(CoordinatorDependencies{
		Remote:     backend,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	if _, err := c.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("get again: %v", err)
	}
	if metrics.CacheCount("tickets", "miss") != 1 || metrics.CacheCount("tickets", "hit") != 1 {
		t.Errorf("cache counters = miss:%d hit:%d",
			metrics.CacheCount("tickets", "miss"), metrics.CacheCount("tickets", "hit"))
	}

	if _, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if metrics.OperationCount("apply_transition", "ok") != 1 {
		t.Error("accepted transition not counted")
	}
	if _, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusOpen, requester, TransitionInput{}); err == nil {
		t.Fatal("expected rejection")
	}
	if metrics.OperationCount("apply_transition", "error") != 1 {
		t.Error("rejected transition not counted")
	}
	if metrics.EventCount(string(events.EventTicketStatusChanged)) != 1 {
		t.Error("recorder missed the status change event")
	}
}

func TestEventsPublishedOnAcceptedOperations(t *testing.T) {
	backend := newFakeRemote()
	backend.seed(openTicket("t1"))

	dispatcher := events.NewInMemoryDispatcher()
	var mu sync.Mutex
	var seen []events.EventType
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			mu.Lock()
			seen = append(seen, e.Type)
			mu.Unlock()
			return nil
		})
	}

	c := NewCoordinator(CoordinatorDependencies{
		Remote:     backend,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})

	if _, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusInProgress, technician, TransitionInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// A rejected transition publishes nothing.
	if _, err := c.ApplyTransition(context.Background(), "t1", domain.TicketStatusClosed, technician, TransitionInput{}); err == nil {
		t.Fatal("expected rejection")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != events.EventTicketStatusChanged {
		t.Errorf("unexpected event stream %v", seen)
	}
}
