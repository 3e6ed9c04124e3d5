package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/config"
	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/pkg/util"
)

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

var _ Service = (*Client)(nil)

// NewClient builds a client for the configured backend.
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		token:   cfg.Token,
		logger:  logger,
	}
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for a token and actor identity.
func (c *Client) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	var out loginResponsePayload
	req := loginRequestPayload{Name: name, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(out.Role)
	if !ok {
		return nil, util.NewTransport(fmt.Errorf("unknown role %q in login response", out.Role))
	}
	return &LoginResult{
		AccessToken: out.AccessToken,
		ActorID:     out.ActorID,
		Name:        out.Name,
		Role:        role,
	}, nil
}

// ListTickets fetches tickets matching the filter.
func (c *Client) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query := url.Values{}
	for _, status := range filter.Statuses {
		query.Add("status", string(status))
	}
	if filter.RequesterID != nil {
		query.Set("requester_id", *filter.RequesterID)
	}
	if filter.TechnicianID != nil {
		query.Set("technician_id", *filter.TechnicianID)
	}
	if filter.IncludeCancelled {
		query.Set("include_cancelled", "true")
	}
	if filter.IncludeArchived {
		query.Set("include_archived", "true")
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	var payloads []ticketPayload
	if err := c.do(ctx, http.MethodGet, "/tickets", query, nil, &payloads); err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(payloads))
	for i := range payloads {
		out = append(out, *payloads[i].toDomain())
	}
	return out, nil
}

// GetTicket fetches one ticket by id.
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var payload ticketPayload
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// CreateTicket submits a draft; the backend assigns id, protocol and
// timestamps and forces status to Open.
func (c *Client) CreateTicket(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	var payload ticketPayload
	if err := c.do(ctx, http.MethodPost, "/tickets", nil, draftPayload(draft), &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// UpdateTicket applies a partial update on behalf of actorID.
func (c *Client) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch, actorID string) (*domain.Ticket, error) {
	query := url.Values{"actor_id": {actorID}}
	var payload ticketPayload
	if err := c.do(ctx, http.MethodPut, "/tickets/"+url.PathEscape(id), query, patchPayload(patch), &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// CancelTicket soft-removes a ticket with the mandatory reason.
func (c *Client) CancelTicket(ctx context.Context, id, actorID, reason string) (*domain.Ticket, error) {
	query := url.Values{"actor_id": {actorID}}
	body := map[string]string{"reason": reason}
	var payload ticketPayload
	if err := c.do(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(id)+"/cancel", query, body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// ArchiveTicket sets the archived flag.
func (c *Client) ArchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error) {
	return c.archiveCall(ctx, id, actorID, "archive")
}

// UnarchiveTicket clears the archived flag.
func (c *Client) UnarchiveTicket(ctx context.Context, id, actorID string) (*domain.Ticket, error) {
	return c.archiveCall(ctx, id, actorID, "unarchive")
}

func (c *Client) archiveCall(ctx context.Context, id, actorID, action string) (*domain.Ticket, error) {
	query := url.Values{"actor_id": {actorID}}
	var payload ticketPayload
	path := "/tickets/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPatch, path, query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// DeleteTicket permanently removes a ticket. Admin only, irreversible.
func (c *Client) DeleteTicket(ctx context.Context, id, actorID string) error {
	query := url.Values{"actor_id": {actorID}}
	return c.do(ctx, http.MethodDelete, "/tickets/"+url.PathEscape(id), query, nil, nil)
}

// ListComments fetches a ticket's comments in creation order.
func (c *Client) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var payloads []commentPayload
	path := "/comments/ticket/" + url.PathEscape(ticketID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payloads); err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(payloads))
	for i := range payloads {
		out = append(out, *payloads[i].toDomain())
	}
	return out, nil
}

// CreateComment appends a comment.
func (c *Client) CreateComment(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	body := commentDraftPayload{
		TicketID: draft.TicketID,
		AuthorID: draft.AuthorID,
		Body:     draft.Body,
		Internal: draft.Internal,
	}
	var payload commentPayload
	if err := c.do(ctx, http.MethodPost, "/comments", nil, body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// ListHistory fetches the authoritative audit trail for a ticket.
func (c *Client) ListHistory(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	var payloads []historyPayload
	path := "/history/ticket/" + url.PathEscape(ticketID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payloads); err != nil {
		return nil, err
	}
	out := make([]domain.HistoryEntry, 0, len(payloads))
	for i := range payloads {
		out = append(out, payloads[i].toDomain())
	}
	return out, nil
}

// ListCategories fetches the category reference collection.
func (c *Client) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active", "true")
	}
	var payloads []categoryPayload
	if err := c.do(ctx, http.MethodGet, "/categories", query, nil, &payloads); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(payloads))
	for i := range payloads {
		out = append(out, payloads[i].toDomain())
	}
	return out, nil
}

// ListTechnicians fetches the technician reference collection.
func (c *Client) ListTechnicians(ctx context.Context) ([]domain.Actor, error) {
	var payloads []actorPayload
	if err := c.do(ctx, http.MethodGet, "/technicians", nil, nil, &payloads); err != nil {
		return nil, err
	}
	out := make([]domain.Actor, 0, len(payloads))
	for i := range payloads {
		out = append(out, payloads[i].toDomain())
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return util.NewTransport(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return util.NewTransport(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return util.NewTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapStatus(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.NewTransport(err)
	}
	return nil
}

// mapStatus translates HTTP failures into the error taxonomy. NotFound,
// Conflict and Unauthorized pass through for the caller to act on; all
// other failures are transport-level.
func mapStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = payload.Detail
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return util.NewNotFound("remote entity", map[string]any{"message": message})
	case http.StatusConflict:
		return util.NewConflict(message, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return util.NewUnauthorized(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return util.NewValidationError(message, nil)
	default:
		return util.NewTransport(fmt.Errorf("status %d: %s", resp.StatusCode, message))
	}
}
