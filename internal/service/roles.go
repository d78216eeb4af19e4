package service

import (
	"context"
	"fmt"
	"log/slog"

	"fact_checker/internal/domain"
)

// RoleService owns the standard/redactor role transition and the tag
// assignments that come with it.
type RoleService struct {
	users        UserStore
	applications ApplicationStore
	assignments  AssignmentStore
	txManager    TransactionManager
	logger       *slog.Logger
}

func NewRoleService(
	users UserStore,
	applications ApplicationStore,
	assignments AssignmentStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *RoleService {
	return &RoleService{
		users:        users,
		applications: applications,
		assignments:  assignments,
		txManager:    txManager,
		logger:       logger.With("component", "roles"),
	}
}

// Promote changes a user's role. Promoting to redactor accepts the user's
// latest pending application and grants one assignment per requested tag;
// demoting to standard revokes every assignment and deletes the accepted
// applications that provisioned them. The role write and its cascade commit
// as one transaction.
func (s *RoleService) Promote(ctx context.Context, caller domain.Identity, userID int64, newRole domain.Role) (domain.UserView, error) {
	if !caller.Staff {
		return domain.UserView{}, fmt.Errorf("promote: %w", domain.ErrPermissionDenied)
	}
	if !newRole.Valid() {
		return domain.UserView{}, fmt.Errorf("promote: role %q: %w", newRole, domain.ErrInvalidArgument)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("promote: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.UpdateRole(txCtx, userID, newRole); err != nil {
			return fmt.Errorf("update role: %w", err)
		}

		if newRole == domain.RoleRedactor {
			return s.provisionAssignments(txCtx, userID)
		}
		return s.revokeAssignments(txCtx, userID)
	})
	if err != nil {
		return domain.UserView{}, fmt.Errorf("promote: %w", err)
	}

	s.logger.Info("role changed",
		"user_id", userID,
		"from", user.Role,
		"to", newRole,
	)

	return s.UserView(ctx, userID)
}

// provisionAssignments accepts the latest pending application and upserts one
// assignment per requested tag. With no pending application the role change
// stands but no tags are granted.
func (s *RoleService) provisionAssignments(ctx context.Context, userID int64) error {
	app, err := s.applications.LatestPending(ctx, userID)
	if err != nil {
		return fmt.Errorf("latest pending application: %w", err)
	}
	if app == nil {
		return nil
	}

	if err := s.applications.MarkAccepted(ctx, app.ID); err != nil {
		return fmt.Errorf("accept application %d: %w", app.ID, err)
	}

	if err := s.assignments.UpsertBatch(ctx, userID, app.RequestedTagIDs); err != nil {
		return fmt.Errorf("grant assignments: %w", err)
	}

	return nil
}

func (s *RoleService) revokeAssignments(ctx context.Context, userID int64) error {
	if err := s.assignments.DeleteByRedactor(ctx, userID); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}

	if err := s.applications.DeleteAcceptedByAuthor(ctx, userID); err != nil {
		return fmt.Errorf("delete accepted applications: %w", err)
	}

	return nil
}

// UserView returns the role-dependent public shape of a user.
func (s *RoleService) UserView(ctx context.Context, userID int64) (domain.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserView{}, err
	}

	if user.Role != domain.RoleRedactor {
		return domain.StandardView(user), nil
	}

	tags, err := s.assignments.ListTags(ctx, userID)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("list assignments: %w", err)
	}

	return domain.RedactorView(user, tags), nil
}
