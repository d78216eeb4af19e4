package service

import (
	"context"
	"fmt"
	"log/slog"

	"fact_checker/internal/domain"
)

// EntryService serves the published side: listing, detail and upvotes.
// Entries are only ever created through ResolutionService.
type EntryService struct {
	entries EntryStore
	logger  *slog.Logger
}

func NewEntryService(entries EntryStore, logger *slog.Logger) *EntryService {
	return &EntryService{
		entries: entries,
		logger:  logger.With("component", "entries"),
	}
}

func (s *EntryService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.entries.List(ctx)
}

func (s *EntryService) Get(ctx context.Context, id int64) (*domain.Entry, error) {
	return s.entries.GetByID(ctx, id)
}

// Upvote records the caller's vote. Voting twice is a no-op.
func (s *EntryService) Upvote(ctx context.Context, caller domain.Identity, entryID int64) error {
	if err := s.entries.Upvote(ctx, entryID, caller.UserID); err != nil {
		return fmt.Errorf("upvote entry %d: %w", entryID, err)
	}
	return nil
}

func (s *EntryService) RemoveUpvote(ctx context.Context, caller domain.Identity, entryID int64) error {
	if err := s.entries.RemoveUpvote(ctx, entryID, caller.UserID); err != nil {
		return fmt.Errorf("remove upvote entry %d: %w", entryID, err)
	}
	return nil
}
