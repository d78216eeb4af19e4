package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fact_checker/internal/domain"
)

// ApplicationService handles redactor-role applications: a standard user
// submits requested tags plus credential documents, staff review the pending
// queue. Acceptance itself happens through RoleService.Promote.
type ApplicationService struct {
	applications ApplicationStore
	tags         TagStore
	blobs        BlobStore
	txManager    TransactionManager
	logger       *slog.Logger
}

func NewApplicationService(
	applications ApplicationStore,
	tags TagStore,
	blobs BlobStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		tags:         tags,
		blobs:        blobs,
		txManager:    txManager,
		logger:       logger.With("component", "applications"),
	}
}

type DocumentUpload struct {
	ContentType string
	Data        []byte
}

type ApplicationDraft struct {
	Title     string
	Content   string
	TagIDs    []int64
	Documents []DocumentUpload
}

func (s *ApplicationService) Submit(ctx context.Context, caller domain.Identity, draft ApplicationDraft) (*domain.Application, error) {
	if caller.Role != domain.RoleStandard {
		return nil, fmt.Errorf("submit application: %w", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("submit application: title and content required: %w", domain.ErrInvalidArgument)
	}
	if len(draft.TagIDs) == 0 {
		return nil, fmt.Errorf("submit application: at least one tag required: %w", domain.ErrInvalidArgument)
	}

	if err := verifyTagIDs(ctx, s.tags, draft.TagIDs); err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	app := &domain.Application{
		AuthorID: caller.UserID,
		Title:    draft.Title,
		Content:  draft.Content,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.applications.Create(txCtx, app); err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		if err := s.applications.LinkTags(txCtx, app.ID, draft.TagIDs); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}

		for _, upload := range draft.Documents {
			key := uuid.NewString()
			if err := s.blobs.Save(txCtx, key, upload.Data); err != nil {
				return fmt.Errorf("store document: %w", err)
			}
			doc := &domain.ApplicationDocument{
				ApplicationID: app.ID,
				StorageKey:    key,
				ContentType:   upload.ContentType,
			}
			if err := s.applications.AddDocument(txCtx, doc); err != nil {
				return fmt.Errorf("record document: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	app.RequestedTagIDs = draft.TagIDs

	s.logger.Info("application submitted",
		"application_id", app.ID,
		"author_id", caller.UserID,
		"tags", len(draft.TagIDs),
		"documents", len(draft.Documents),
	)

	return app, nil
}

func (s *ApplicationService) ListPending(ctx context.Context, caller domain.Identity) ([]domain.Application, error) {
	if !caller.Staff {
		return nil, fmt.Errorf("list applications: %w", domain.ErrPermissionDenied)
	}
	return s.applications.ListPending(ctx)
}

func (s *ApplicationService) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.Staff && app.AuthorID != caller.UserID {
		return nil, fmt.Errorf("application %d: %w", id, domain.ErrPermissionDenied)
	}

	return app, nil
}
