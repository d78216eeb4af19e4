package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fact_checker/internal/domain"
)

// ResolutionService transforms an open request into a published entry,
// closing the request in the same transaction.
type ResolutionService struct {
	requests  RequestStore
	entries   EntryStore
	tags      TagStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
}

func NewResolutionService(
	requests RequestStore,
	entries EntryStore,
	tags TagStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
) *ResolutionService {
	return &ResolutionService{
		requests:  requests,
		entries:   entries,
		tags:      tags,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "resolution"),
	}
}

// Resolve creates the entry from the draft, points the request at it and
// stamps closed_at, all atomically. The entry's articles are the
// deduplicated union of the request's and the draft's. Resolving an
// already-closed request is a conflict; unknown tag ids fail the whole
// resolution rather than being dropped silently.
func (s *ResolutionService) Resolve(ctx context.Context, caller domain.Identity, requestID int64, draft domain.EntryDraft, tagIDs []int64) (*domain.Entry, error) {
	if !caller.Staff && !caller.IsRedactor() {
		return nil, fmt.Errorf("resolve request %d: %w", requestID, domain.ErrPermissionDenied)
	}

	if err := validateDraft(draft); err != nil {
		return nil, fmt.Errorf("resolve request %d: %w", requestID, err)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	if req.Closed() {
		return nil, fmt.Errorf("resolve request %d: already closed: %w", requestID, domain.ErrConflict)
	}

	if err := verifyTagIDs(ctx, s.tags, tagIDs); err != nil {
		return nil, fmt.Errorf("resolve request %d: %w", requestID, err)
	}

	entry := &domain.Entry{
		AuthorID:   caller.UserID,
		Title:      draft.Title,
		Content:    draft.Content,
		Sources:    draft.Sources,
		Articles:   mergeArticles(req.Articles, draft.Articles),
		IsTruthful: draft.IsTruthful,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.entries.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}

		closed, err := s.requests.AttachEntry(txCtx, requestID, entry.ID, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("close request: %w", err)
		}
		if !closed {
			// Lost the race to a concurrent resolution.
			return fmt.Errorf("request %d already closed: %w", requestID, domain.ErrConflict)
		}

		if err := s.entries.LinkTags(txCtx, entry.ID, tagIDs); err != nil {
			return fmt.Errorf("link entry tags: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	s.logger.Info("request resolved",
		"request_id", requestID,
		"entry_id", entry.ID,
		"redactor_id", caller.UserID,
		"is_truthful", entry.IsTruthful,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishEntry(ctx, entry); err != nil {
			s.logger.Error("publish entry event", "entry_id", entry.ID, "error", err)
		}
	}

	return s.entries.GetByID(ctx, entry.ID)
}

func validateDraft(draft domain.EntryDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("title required: %w", domain.ErrInvalidArgument)
	}
	if len(draft.Sources) == 0 {
		return fmt.Errorf("sources required: %w", domain.ErrInvalidArgument)
	}
	for _, src := range draft.Sources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("blank source: %w", domain.ErrInvalidArgument)
		}
	}
	return nil
}

// mergeArticles unions the two lists, first-seen order, duplicates removed.
func mergeArticles(requestArticles, draftArticles []string) []string {
	seen := make(map[string]bool, len(requestArticles)+len(draftArticles))
	merged := make([]string, 0, len(requestArticles)+len(draftArticles))

	for _, url := range requestArticles {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		merged = append(merged, url)
	}
	for _, url := range draftArticles {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		merged = append(merged, url)
	}

	return merged
}
