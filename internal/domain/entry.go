package domain

import "time"

// Entry is a published fact-check verdict. Immutable once created, except
// for upvote aggregation.
type Entry struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Sources    []string  `json:"sources"`
	Articles   []string  `json:"articles"`
	IsTruthful bool      `json:"is_truthful"`
	CreatedAt  time.Time `json:"created_at"`
	Tags       []Tag     `json:"tags"`
	Upvotes    int       `json:"upvotes"`
}

// EntryDraft is the redactor-supplied portion of a resolution. Articles are
// merged with the originating request's articles when the entry is created.
type EntryDraft struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Sources    []string `json:"sources"`
	Articles   []string `json:"articles"`
	IsTruthful bool     `json:"is_truthful"`
}
