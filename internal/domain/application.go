package domain

import "time"

// Application is a standard user's petition for the redactor role, carrying
// the topic tags they want to work on. Once accepted it is immutable history.
type Application struct {
	ID              int64     `json:"id"`
	AuthorID        int64     `json:"author_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	RequestedTagIDs []int64   `json:"requested_tag_ids"`
	Accepted        bool      `json:"accepted"`
	CreatedAt       time.Time `json:"created_at"`
}

// ApplicationDocument is an uploaded credential scan. The blob itself is
// opaque; only the storage key is tracked.
type ApplicationDocument struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	StorageKey    string    `json:"storage_key"`
	ContentType   string    `json:"content_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
