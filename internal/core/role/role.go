// Package role contains the pure authorization rules for guild roles.
package role

import (
	"fmt"
	"strings"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
)

// Role is a user's standing within a guild.
type Role string

const (
	Teamster   Role = "TEAMSTER"
	Submitter  Role = "SUBMITTER"
	Supervisor Role = "SUPERVISOR"
	Admin      Role = "ADMIN"
)

var ranks = map[Role]int{
	Teamster:   1,
	Submitter:  2,
	Supervisor: 3,
	Admin:      4,
}

// Parse accepts a role name in any case.
func Parse(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := ranks[r]; !ok {
		return "", apperr.New(apperr.InvalidArgument, "unknown role %q (expected teamster, submitter, supervisor or admin)", s)
	}
	return r, nil
}

// Rank orders roles; unknown roles rank zero.
func (r Role) Rank() int {
	return ranks[r]
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// Action is something a user may attempt.
type Action string

const (
	ActionView         Action = "view"
	ActionCreateTicket Action = "create_ticket"
	ActionSync         Action = "sync"
	ActionManageRole   Action = "manage_role"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a PermissionDenied error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.New(apperr.PermissionDenied, "%s", r.Reason)
}

// AuthorizeContext provides context for authorization guards.
type AuthorizeContext struct {
	UserID int64
	Guild  string
	Role   Role // empty when the user has no role
	Action Action
	Target Role // role being granted or removed, for ActionManageRole
}

// RequiredRole returns the minimum role for an action.
func RequiredRole(action Action, target Role) Role {
	switch action {
	case ActionView:
		return Teamster
	case ActionCreateTicket:
		return Submitter
	case ActionSync:
		return Supervisor
	case ActionManageRole:
		if target.AtLeast(Supervisor) {
			return Admin
		}
		return Supervisor
	}
	return Admin
}

// CanPerform evaluates whether a user may perform an action.
// Rules:
// - Users without a role may do nothing
// - Viewing needs any role, filing tickets SUBMITTER, syncing SUPERVISOR
// - Managing TEAMSTER/SUBMITTER needs SUPERVISOR, SUPERVISOR/ADMIN needs ADMIN
func CanPerform(ctx AuthorizeContext) GuardResult {
	if ctx.Role == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("user %d has no role in %s", ctx.UserID, ctx.Guild),
		}
	}

	required := RequiredRole(ctx.Action, ctx.Target)
	if !ctx.Role.AtLeast(required) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s requires %s or above; user %d is %s", ctx.Action, required, ctx.UserID, ctx.Role),
		}
	}

	return GuardResult{Allowed: true}
}
