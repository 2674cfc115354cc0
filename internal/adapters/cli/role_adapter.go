package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// RoleAdapter translates role management to the CLI. The CLI runs with
// local operator trust, so role changes skip actor authorization.
type RoleAdapter struct {
	users primary.UserService
	out   io.Writer
}

// NewRoleAdapter creates a new RoleAdapter.
func NewRoleAdapter(users primary.UserService, out io.Writer) *RoleAdapter {
	return &RoleAdapter{users: users, out: out}
}

// Show prints a user's role.
func (a *RoleAdapter) Show(ctx context.Context, guild string, userID int64) error {
	r, err := a.users.GetRole(ctx, userID, guild)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %d in %s: %s (since %s)\n", r.UserID, r.Guild, r.Role, r.UpdatedAt.UTC().Format(TimeLayout))
	return nil
}

// Set grants a role.
func (a *RoleAdapter) Set(ctx context.Context, guild string, userID int64, role string) error {
	r, err := a.users.SetRole(ctx, primary.SetRoleRequest{
		Trusted: true,
		Guild:   guild,
		UserID:  userID,
		Role:    role,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s User %d is now %s in %s\n", okMark(), r.UserID, r.Role, r.Guild)
	return nil
}

// Remove revokes a role.
func (a *RoleAdapter) Remove(ctx context.Context, guild string, userID int64) error {
	err := a.users.RemoveRole(ctx, primary.RemoveRoleRequest{
		Trusted: true,
		Guild:   guild,
		UserID:  userID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Removed user %d's role in %s\n", okMark(), userID, guild)
	return nil
}

// ExecAdapter runs chat commands from the CLI.
type ExecAdapter struct {
	commands primary.CommandService
	out      io.Writer
}

// NewExecAdapter creates a new ExecAdapter.
func NewExecAdapter(commands primary.CommandService, out io.Writer) *ExecAdapter {
	return &ExecAdapter{commands: commands, out: out}
}

// Exec runs one chat command as the given user and prints the reply.
func (a *ExecAdapter) Exec(ctx context.Context, req primary.CommandRequest) error {
	reply, err := a.commands.Execute(ctx, req)
	if err != nil {
		return err
	}

	mark := okMark()
	if reply.Outcome != "ok" {
		mark = warnMark()
	}
	fmt.Fprintf(a.out, "%s %s\n", mark, reply.Text)
	return nil
}
