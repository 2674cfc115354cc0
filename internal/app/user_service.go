package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/core/role"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	store  secondary.Store
	clock  clock.Clock
	logger logrus.FieldLogger
}

var _ primary.UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(store secondary.Store, clk clock.Clock, logger logrus.FieldLogger) *UserServiceImpl {
	return &UserServiceImpl{store: store, clock: clk, logger: logger}
}

// GetRole returns a user's role in a guild.
func (s *UserServiceImpl) GetRole(ctx context.Context, userID int64, guild string) (*primary.UserRole, error) {
	record, err := s.store.Repos().Users.GetRole(ctx, userID, guild)
	if err != nil {
		return nil, err
	}
	return &primary.UserRole{
		UserID:    record.UserID,
		Guild:     record.Guild,
		Role:      role.Role(record.Role),
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// SetRole grants a role. The actor must be allowed to manage both the new
// role and the one being replaced.
func (s *UserServiceImpl) SetRole(ctx context.Context, req primary.SetRoleRequest) (*primary.UserRole, error) {
	newRole, err := role.Parse(req.Role)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(repos *secondary.Repositories) error {
		if !req.Trusted {
			if err := authorize(ctx, repos, req.ActorID, req.Guild, role.ActionManageRole, newRole); err != nil {
				return err
			}
			existing, err := repos.Users.GetRole(ctx, req.UserID, req.Guild)
			if err != nil && !apperr.IsKind(err, apperr.NotFound) {
				return err
			}
			if existing != nil {
				if err := authorize(ctx, repos, req.ActorID, req.Guild, role.ActionManageRole, role.Role(existing.Role)); err != nil {
					return err
				}
			}
		}

		return repos.Users.UpsertRole(ctx, &secondary.UserRoleRecord{
			UserID:    req.UserID,
			Guild:     req.Guild,
			Role:      string(newRole),
			UpdatedAt: s.clock.Now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user":  req.UserID,
		"guild": req.Guild,
		"role":  newRole,
		"actor": req.ActorID,
	}).Info("role set")

	return s.GetRole(ctx, req.UserID, req.Guild)
}

// RemoveRole revokes a role. The actor must be allowed to manage it.
func (s *UserServiceImpl) RemoveRole(ctx context.Context, req primary.RemoveRoleRequest) error {
	err := s.store.InTx(ctx, func(repos *secondary.Repositories) error {
		if !req.Trusted {
			existing, err := repos.Users.GetRole(ctx, req.UserID, req.Guild)
			if err != nil {
				return err
			}
			if err := authorize(ctx, repos, req.ActorID, req.Guild, role.ActionManageRole, role.Role(existing.Role)); err != nil {
				return err
			}
		}
		return repos.Users.DeleteRole(ctx, req.UserID, req.Guild)
	})
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user":  req.UserID,
		"guild": req.Guild,
		"actor": req.ActorID,
	}).Info("role removed")
	return nil
}

// Authorize returns PermissionDenied unless the user may perform action.
func (s *UserServiceImpl) Authorize(ctx context.Context, userID int64, guild string, action role.Action, target role.Role) error {
	return authorize(ctx, s.store.Repos(), userID, guild, action, target)
}

func authorize(ctx context.Context, repos *secondary.Repositories, userID int64, guild string, action role.Action, target role.Role) error {
	guardCtx := role.AuthorizeContext{
		UserID: userID,
		Guild:  guild,
		Action: action,
		Target: target,
	}

	record, err := repos.Users.GetRole(ctx, userID, guild)
	switch {
	case apperr.IsKind(err, apperr.NotFound):
		// no role: the guard denies
	case err != nil:
		return err
	default:
		guardCtx.Role = role.Role(record.Role)
	}

	return role.CanPerform(guardCtx).Error()
}
