package remote

import (
	"time"

	"github.com/spec-kit/helpdesk-client/internal/domain"
)

// Wire payloads mirror the backend's JSON field names; domain types stay
// free of serialization concerns.

type ticketPayload struct {
	ID            string     `json:"id"`
	Protocol      string     `json:"protocol"`
	RequesterID   string     `json:"requester_id"`
	CategoryID    *string    `json:"category_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Urgency       *string    `json:"urgency,omitempty"`
	Status        string     `json:"status"`
	TechnicianID  *string    `json:"technician_id,omitempty"`
	Resolution    *string    `json:"resolution,omitempty"`
	InternalNotes *string    `json:"internal_notes,omitempty"`
	Rating        *int       `json:"rating,omitempty"`
	Cancelled     bool       `json:"cancelled"`
	Archived      bool       `json:"archived"`
	OpenedAt      time.Time  `json:"opened_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

func (p *ticketPayload) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:            p.ID,
		Protocol:      p.Protocol,
		RequesterID:   p.RequesterID,
		CategoryID:    p.CategoryID,
		Title:         p.Title,
		Description:   p.Description,
		Priority:      domain.TicketPriority(p.Priority),
		Status:        domain.TicketStatus(p.Status),
		TechnicianID:  p.TechnicianID,
		Resolution:    p.Resolution,
		InternalNotes: p.InternalNotes,
		Rating:        p.Rating,
		Cancelled:     p.Cancelled,
		Archived:      p.Archived,
		OpenedAt:      p.OpenedAt,
		UpdatedAt:     p.UpdatedAt,
		ResolvedAt:    p.ResolvedAt,
	}
	if p.Urgency != nil {
		urgency := domain.TicketUrgency(*p.Urgency)
		t.Urgency = &urgency
	}
	return t
}

type ticketDraftPayload struct {
	RequesterID  string  `json:"requester_id"`
	CategoryID   *string `json:"category_id,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Priority     string  `json:"priority,omitempty"`
	Urgency      *string `json:"urgency,omitempty"`
	TechnicianID *string `json:"technician_id,omitempty"`
}

func draftPayload(draft domain.TicketDraft) ticketDraftPayload {
	p := ticketDraftPayload{
		RequesterID:  draft.RequesterID,
		CategoryID:   draft.CategoryID,
		Title:        draft.Title,
		Description:  draft.Description,
		Priority:     string(draft.Priority),
		TechnicianID: draft.TechnicianID,
	}
	if draft.Urgency != nil {
		urgency := string(*draft.Urgency)
		p.Urgency = &urgency
	}
	return p
}

type ticketPatchPayload struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Urgency       *string `json:"urgency,omitempty"`
	Status        *string `json:"status,omitempty"`
	TechnicianID  *string `json:"technician_id,omitempty"`
	Resolution    *string `json:"resolution,omitempty"`
	InternalNotes *string `json:"internal_notes,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
}

func patchPayload(patch domain.TicketPatch) ticketPatchPayload {
	p := ticketPatchPayload{
		Title:         patch.Title,
		Description:   patch.Description,
		CategoryID:    patch.CategoryID,
		TechnicianID:  patch.TechnicianID,
		Resolution:    patch.Resolution,
		InternalNotes: patch.InternalNotes,
		Rating:        patch.Rating,
	}
	if patch.Priority != nil {
		v := string(*patch.Priority)
		p.Priority = &v
	}
	if patch.Urgency != nil {
		v := string(*patch.Urgency)
		p.Urgency = &v
	}
	if patch.Status != nil {
		v := string(*patch.Status)
		p.Status = &v
	}
	return p
}

type commentPayload struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *commentPayload) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        p.ID,
		TicketID:  p.TicketID,
		AuthorID:  p.AuthorID,
		Body:      p.Body,
		Internal:  p.Internal,
		CreatedAt: p.CreatedAt,
	}
}

type commentDraftPayload struct {
	TicketID string `json:"ticket_id"`
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

type historyPayload struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	PriorStatus *string   `json:"prior_status,omitempty"`
	NewStatus   *string   `json:"new_status,omitempty"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *historyPayload) toDomain() domain.HistoryEntry {
	entry := domain.HistoryEntry{
		ID:        p.ID,
		TicketID:  p.TicketID,
		ActorID:   p.ActorID,
		Action:    domain.HistoryAction(p.Action),
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
	if p.PriorStatus != nil {
		status := domain.TicketStatus(*p.PriorStatus)
		entry.PriorStatus = &status
	}
	if p.NewStatus != nil {
		status := domain.TicketStatus(*p.NewStatus)
		entry.NewStatus = &status
	}
	return entry
}

type categoryPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *categoryPayload) toDomain() domain.Category {
	return domain.Category{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

type actorPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

func (p *actorPayload) toDomain() domain.Actor {
	return domain.Actor{
		ID:     p.ID,
		Name:   p.Name,
		Role:   domain.Role(p.Role),
		Active: p.Active,
	}
}

type loginRequestPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ActorID     string `json:"actor_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
