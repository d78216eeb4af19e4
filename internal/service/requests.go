package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fact_checker/internal/domain"
)

// RequestService owns the request lifecycle up to resolution: submission,
// tag-overlap routing to redactors, claiming and releasing.
type RequestService struct {
	requests  RequestStore
	tags      TagStore
	txManager TransactionManager
	logger    *slog.Logger
}

func NewRequestService(
	requests RequestStore,
	tags TagStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *RequestService {
	return &RequestService{
		requests:  requests,
		tags:      tags,
		txManager: txManager,
		logger:    logger.With("component", "requests"),
	}
}

type RequestDraft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Articles []string `json:"articles"`
	TagIDs   []int64  `json:"tag_ids"`
}

func (s *RequestService) Create(ctx context.Context, caller domain.Identity, draft RequestDraft) (*domain.Request, error) {
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("create request: title and content required: %w", domain.ErrInvalidArgument)
	}

	if err := s.verifyTagIDs(ctx, draft.TagIDs); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req := &domain.Request{
		AuthorID: caller.UserID,
		Title:    draft.Title,
		Content:  draft.Content,
		Articles: draft.Articles,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.requests.Create(txCtx, req); err != nil {
			return fmt.Errorf("insert request: %w", err)
		}
		if err := s.requests.LinkTags(txCtx, req.ID, draft.TagIDs); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("request created", "request_id", req.ID, "author_id", caller.UserID)

	return s.requests.GetByID(ctx, req.ID)
}

func (s *RequestService) Get(ctx context.Context, id int64) (*domain.Request, error) {
	return s.requests.GetByID(ctx, id)
}

// Unassigned returns the open requests visible to the caller: staff see all
// of them, redactors see those sharing at least one tag with their
// assignment set.
func (s *RequestService) Unassigned(ctx context.Context, caller domain.Identity) ([]domain.Request, error) {
	switch {
	case caller.Staff:
		return s.requests.ListUnassigned(ctx)
	case caller.IsRedactor():
		return s.requests.ListUnassignedMatching(ctx, caller.UserID)
	default:
		return nil, fmt.Errorf("unassigned requests: %w", domain.ErrPermissionDenied)
	}
}

// Claim assigns the request to the calling redactor. The assignment is a
// compare-and-set: when two redactors race, the first writer wins. Claiming
// a request the caller already holds succeeds as a no-op; a request held by
// another redactor is a conflict.
func (s *RequestService) Claim(ctx context.Context, caller domain.Identity, requestID int64) error {
	if !caller.IsRedactor() {
		return fmt.Errorf("claim request %d: %w", requestID, domain.ErrPermissionDenied)
	}

	claimed, err := s.requests.Claim(ctx, requestID, caller.UserID)
	if err != nil {
		return fmt.Errorf("claim request %d: %w", requestID, err)
	}
	if claimed {
		s.logger.Info("request claimed", "request_id", requestID, "redactor_id", caller.UserID)
		return nil
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("claim request %d: %w", requestID, err)
	}

	if req.RedactorID != nil && *req.RedactorID == caller.UserID {
		return nil
	}

	return fmt.Errorf("claim request %d: already claimed: %w", requestID, domain.ErrConflict)
}

// Release clears the assignment when called by staff or the current
// assignee. Anyone else's release is silently ignored.
func (s *RequestService) Release(ctx context.Context, caller domain.Identity, requestID int64) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("release request %d: %w", requestID, err)
	}

	assignee := req.RedactorID != nil && *req.RedactorID == caller.UserID
	if !caller.Staff && !assignee {
		return nil
	}

	if err := s.requests.ClearRedactor(ctx, requestID); err != nil {
		return fmt.Errorf("release request %d: %w", requestID, err)
	}

	s.logger.Info("request released", "request_id", requestID, "caller_id", caller.UserID)
	return nil
}

// verifyTagIDs fails with NotFound when any id is missing from the registry.
func (s *RequestService) verifyTagIDs(ctx context.Context, tagIDs []int64) error {
	return verifyTagIDs(ctx, s.tags, tagIDs)
}

func verifyTagIDs(ctx context.Context, tags TagStore, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	existing, err := tags.ExistingIDs(ctx, tagIDs)
	if err != nil {
		return fmt.Errorf("verify tags: %w", err)
	}

	known := make(map[int64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	for _, id := range tagIDs {
		if !known[id] {
			return fmt.Errorf("tag %d: %w", id, domain.ErrNotFound)
		}
	}

	return nil
}
