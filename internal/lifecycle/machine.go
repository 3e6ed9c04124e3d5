// Package lifecycle holds the pure decision logic for ticket workflow:
// which status transitions are legal, who may perform them, and what side
// data each one requires. It never touches the network or the store.
package lifecycle

import (
	"strings"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/pkg/util"
)

// TransitionPlan describes an accepted status change and the side fields
// the remote mutation must carry.
type TransitionPlan struct {
	From            domain.TicketStatus
	To              domain.TicketStatus
	NeedsResolution bool
	Reopen          bool
}

type transitionRule struct {
	to              domain.TicketStatus
	needsResolution bool
	reopen          bool
}

// allowedTransitions is the single transition table consulted everywhere.
// Closed and Resolved may be displayed merged, but they stay distinct
// states here: a Closed ticket does not accept Resolved-only transitions.
var allowedTransitions = map[domain.TicketStatus][]transitionRule{
	domain.TicketStatusOpen: {
		{to: domain.TicketStatusInProgress},
	},
	domain.TicketStatusInProgress: {
		{to: domain.TicketStatusWaiting},
		{to: domain.TicketStatusResolved, needsResolution: true},
	},
	domain.TicketStatusWaiting: {
		{to: domain.TicketStatusInProgress},
		{to: domain.TicketStatusResolved, needsResolution: true},
	},
	domain.TicketStatusResolved: {
		{to: domain.TicketStatusInProgress, reopen: true},
		{to: domain.TicketStatusClosed},
	},
	domain.TicketStatusClosed: {
		{to: domain.TicketStatusInProgress, reopen: true},
	},
}

// ValidateTransition maps (current status, requested status, actor role)
// to a plan or a rejection. Pure; safe to call from anywhere.
func ValidateTransition(current, requested domain.TicketStatus, role domain.Role) (*TransitionPlan, error) {
	if !role.CanManageTickets() {
		return nil, util.NewUnauthorized("role may not change ticket status")
	}
	for _, rule := range allowedTransitions[current] {
		if rule.to == requested {
			return &TransitionPlan{
				From:            current,
				To:              requested,
				NeedsResolution: rule.needsResolution,
				Reopen:          rule.reopen,
			}, nil
		}
	}
	return nil, util.NewIllegalTransition(string(current), string(requested))
}

// RequireResolution rejects a Resolved/Closed-bound plan whose resolution
// text is empty. Missing text is an error, never silently defaulted.
func (p *TransitionPlan) RequireResolution(text string) error {
	if p.NeedsResolution && strings.TrimSpace(text) == "" {
		return util.NewMissingRequiredField("resolution_text")
	}
	return nil
}

// ValidateCancel gates soft removal: technician/admin only, a non-empty
// reason, and not already cancelled.
func ValidateCancel(t *domain.Ticket, role domain.Role, reason string) error {
	if !role.CanManageTickets() {
		return util.NewUnauthorized("role may not cancel tickets")
	}
	if t.Cancelled {
		return util.NewIllegalTransition(string(t.Status), string(t.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return util.NewMissingRequiredField("cancellation_reason")
	}
	return nil
}

// ValidateArchiveToggle gates the archived flag. The flag is orthogonal to
// status and may be toggled from any state.
func ValidateArchiveToggle(role domain.Role) error {
	if !role.CanManageTickets() {
		return util.NewUnauthorized("role may not archive tickets")
	}
	return nil
}

// ValidateRating allows a 1-5 rating on resolved or closed tickets, set by
// the ticket's own requester and nobody else.
func ValidateRating(t *domain.Ticket, actor domain.Actor, rating int) error {
	if rating < 1 || rating > 5 {
		return util.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if t.Status != domain.TicketStatusResolved && t.Status != domain.TicketStatusClosed {
		return util.NewIllegalTransition(string(t.Status), string(t.Status))
	}
	if actor.ID != t.RequesterID {
		return util.NewUnauthorized("only the requester may rate a ticket")
	}
	return nil
}

// TargetsFrom lists the statuses reachable from current, in table order.
func TargetsFrom(current domain.TicketStatus) []domain.TicketStatus {
	rules := allowedTransitions[current]
	out := make([]domain.TicketStatus, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule.to)
	}
	return out
}
