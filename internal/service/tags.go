package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fact_checker/internal/domain"
)

// TagService is the authoritative topic registry. Deleting a tag explicitly
// removes every junction row that references it, inside one transaction, so
// no orphaned assignments survive.
type TagService struct {
	tags         TagStore
	assignments  AssignmentStore
	requests     RequestStore
	entries      EntryStore
	applications ApplicationStore
	txManager    TransactionManager
	logger       *slog.Logger
}

func NewTagService(
	tags TagStore,
	assignments AssignmentStore,
	requests RequestStore,
	entries EntryStore,
	applications ApplicationStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *TagService {
	return &TagService{
		tags:         tags,
		assignments:  assignments,
		requests:     requests,
		entries:      entries,
		applications: applications,
		txManager:    txManager,
		logger:       logger.With("component", "tags"),
	}
}

func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

func (s *TagService) Create(ctx context.Context, caller domain.Identity, name string) (*domain.Tag, error) {
	if !caller.Staff {
		return nil, fmt.Errorf("create tag: %w", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create tag: name required: %w", domain.ErrInvalidArgument)
	}

	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.Staff {
		return fmt.Errorf("delete tag %d: %w", id, domain.ErrPermissionDenied)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assignments.DeleteByTag(txCtx, id); err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}
		if err := s.requests.UnlinkTag(txCtx, id); err != nil {
			return fmt.Errorf("unlink requests: %w", err)
		}
		if err := s.entries.UnlinkTag(txCtx, id); err != nil {
			return fmt.Errorf("unlink entries: %w", err)
		}
		if err := s.applications.UnlinkTag(txCtx, id); err != nil {
			return fmt.Errorf("unlink applications: %w", err)
		}
		return s.tags.Delete(txCtx, id)
	})
	if err != nil {
		return fmt.Errorf("delete tag %d: %w", id, err)
	}

	s.logger.Info("tag deleted", "tag_id", id)
	return nil
}
