package domain

import "time"

// Comment belongs to exactly one ticket and one author. Comments are
// append-only and ordered by creation time. Internal comments are hidden
// from requester-role readers.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	Internal  bool
	CreatedAt time.Time
}

// CommentDraft describes comment creation payload.
type CommentDraft struct {
	TicketID string
	AuthorID string
	Body     string
	Internal bool
}
