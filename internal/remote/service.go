// Package remote is the only place the coordinator touches the network.
// Service is the port onto the helpdesk backend; Client is its HTTP
// implementation.
package remote

import (
	"context"

	"github.com/spec-kit/helpdesk-client/internal/domain"
)

// LoginResult is what the backend returns for successful credentials.
type LoginResult struct {
	AccessToken string
	ActorID     string
	Name        string
	Role        domain.Role
}

// Service exposes the backend operations the coordinator consumes. All
// failures come back as pkg/util DomainErrors carrying the taxonomy code.
type Service interface {
	Login(ctx context.Context, name, password string) (*LoginResult, error)

	ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch, actorID string) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, id, actorID, reason string) (*domain.Ticket, error)
	ArchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error)
	UnarchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id, actorID string) error

	ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error)
	CreateComment(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error)
	ListHistory(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)

	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	ListTechnicians(ctx context.Context) ([]domain.Actor, error)
}
