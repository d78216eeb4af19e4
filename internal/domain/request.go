package domain

import "time"

// Request is a user-submitted claim pending fact-check resolution. It is
// unassigned while RedactorID is nil and closed once EntryID is set.
type Request struct {
	ID         int64      `json:"id"`
	AuthorID   int64      `json:"author_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Articles   []string   `json:"articles"`
	RedactorID *int64     `json:"redactor_id"`
	EntryID    *int64     `json:"entry_id"`
	CreatedAt  time.Time  `json:"created_at"`
	ClosedAt   *time.Time `json:"closed_at"`
	Tags       []Tag      `json:"tags"`
}

func (r *Request) Closed() bool {
	return r.EntryID != nil
}
