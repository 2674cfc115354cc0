package primary

import (
	"context"
	"time"

	"github.com/tenth-speed-writer/PFLTK/internal/core/role"
)

// UserService defines the primary port for guild roles and authorization.
type UserService interface {
	// GetRole returns a user's role in a guild.
	GetRole(ctx context.Context, userID int64, guild string) (*UserRole, error)

	// SetRole grants a role, checking the actor's authority unless trusted.
	SetRole(ctx context.Context, req SetRoleRequest) (*UserRole, error)

	// RemoveRole revokes a role, checking the actor's authority unless trusted.
	RemoveRole(ctx context.Context, req RemoveRoleRequest) error

	// Authorize returns PermissionDenied unless the user may perform action.
	Authorize(ctx context.Context, userID int64, guild string, action role.Action, target role.Role) error
}

// UserRole is a user's role in a guild.
type UserRole struct {
	UserID    int64
	Guild     string
	Role      role.Role
	UpdatedAt time.Time
}

// SetRoleRequest contains parameters for granting a role.
type SetRoleRequest struct {
	ActorID int64
	Trusted bool // local operator; skips the actor check
	Guild   string
	UserID  int64
	Role    string
}

// RemoveRoleRequest contains parameters for revoking a role.
type RemoveRoleRequest struct {
	ActorID int64
	Trusted bool
	Guild   string
	UserID  int64
}
