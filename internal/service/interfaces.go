package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"fact_checker/internal/domain"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
}

type TagStore interface {
	Create(ctx context.Context, name string) (*domain.Tag, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Tag, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type AssignmentStore interface {
	UpsertBatch(ctx context.Context, redactorID int64, tagIDs []int64) error
	DeleteByRedactor(ctx context.Context, redactorID int64) error
	DeleteByTag(ctx context.Context, tagID int64) error
	ListTags(ctx context.Context, redactorID int64) ([]domain.Tag, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *domain.Application) (int64, error)
	LinkTags(ctx context.Context, applicationID int64, tagIDs []int64) error
	AddDocument(ctx context.Context, doc *domain.ApplicationDocument) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	LatestPending(ctx context.Context, authorID int64) (*domain.Application, error)
	MarkAccepted(ctx context.Context, id int64) error
	DeleteAcceptedByAuthor(ctx context.Context, authorID int64) error
	ListPending(ctx context.Context) ([]domain.Application, error)
	Documents(ctx context.Context, applicationID int64) ([]domain.ApplicationDocument, error)
	UnlinkTag(ctx context.Context, tagID int64) error
}

type RequestStore interface {
	Create(ctx context.Context, req *domain.Request) (int64, error)
	LinkTags(ctx context.Context, requestID int64, tagIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	ListUnassigned(ctx context.Context) ([]domain.Request, error)
	ListUnassignedMatching(ctx context.Context, redactorID int64) ([]domain.Request, error)
	Claim(ctx context.Context, id, redactorID int64) (bool, error)
	ClearRedactor(ctx context.Context, id int64) error
	AttachEntry(ctx context.Context, id, entryID int64, closedAt time.Time) (bool, error)
	UnlinkTag(ctx context.Context, tagID int64) error
}

type EntryStore interface {
	Create(ctx context.Context, entry *domain.Entry) (int64, error)
	LinkTags(ctx context.Context, entryID int64, tagIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Entry, error)
	List(ctx context.Context) ([]domain.Entry, error)
	FalseEntryArticles(ctx context.Context) ([]string, error)
	Upvote(ctx context.Context, entryID, userID int64) error
	RemoveUpvote(ctx context.Context, entryID, userID int64) error
	UnlinkTag(ctx context.Context, tagID int64) error
}

// BlobStore persists uploaded application documents as opaque blobs.
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishEntry(ctx context.Context, entry *domain.Entry) error
	Close() error
}
