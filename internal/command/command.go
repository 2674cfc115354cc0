// Package command defines the chat commands understood by the dispatcher,
// how they are parsed from message text and how their results read back.
package command

import (
	"github.com/tenth-speed-writer/PFLTK/internal/core/role"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// Command is one parsed chat command. The set of commands is closed; the
// dispatcher switches over the concrete types below.
type Command interface {
	// Name is the command's audit name, e.g. "ticket create".
	Name() string

	// Action is what the caller must be allowed to do. Role management
	// is authorized against the target role by the user service instead.
	Action() role.Action

	isCommand()
}

// CreateTicket files a logistics ticket. A nil WarNumber means the current war.
type CreateTicket struct {
	WarNumber   *int
	Destination primary.Location
	Origin      primary.OriginInput
	Objective   string
}

// ShowTicket shows one ticket.
type ShowTicket struct {
	Number int64
}

// ListTickets lists the current war's tickets.
type ListTickets struct{}

// ListMaps lists the current war's hexes.
type ListMaps struct{}

// ListIcons lists a hex's icons.
type ListIcons struct {
	MapName string
}

// ShowWar shows the latest recorded war and its counts.
type ShowWar struct{}

// ShowRole shows a user's role. UserID 0 means the caller.
type ShowRole struct {
	UserID int64
}

// SetRole grants a role.
type SetRole struct {
	UserID int64
	Role   string
}

// RemoveRole revokes a role.
type RemoveRole struct {
	UserID int64
}

// SyncWar pulls the current war from the War API.
type SyncWar struct{}

func (CreateTicket) Name() string { return "ticket create" }
func (ShowTicket) Name() string   { return "ticket show" }
func (ListTickets) Name() string  { return "tickets" }
func (ListMaps) Name() string     { return "maps" }
func (ListIcons) Name() string    { return "icons" }
func (ShowWar) Name() string      { return "war" }
func (ShowRole) Name() string     { return "role show" }
func (SetRole) Name() string      { return "role set" }
func (RemoveRole) Name() string   { return "role remove" }
func (SyncWar) Name() string      { return "sync" }

func (CreateTicket) Action() role.Action { return role.ActionCreateTicket }
func (ShowTicket) Action() role.Action   { return role.ActionView }
func (ListTickets) Action() role.Action  { return role.ActionView }
func (ListMaps) Action() role.Action     { return role.ActionView }
func (ListIcons) Action() role.Action    { return role.ActionView }
func (ShowWar) Action() role.Action      { return role.ActionView }
func (ShowRole) Action() role.Action     { return role.ActionView }
func (SetRole) Action() role.Action      { return role.ActionManageRole }
func (RemoveRole) Action() role.Action   { return role.ActionManageRole }
func (SyncWar) Action() role.Action      { return role.ActionSync }

func (CreateTicket) isCommand() {}
func (ShowTicket) isCommand()   {}
func (ListTickets) isCommand()  {}
func (ListMaps) isCommand()     {}
func (ListIcons) isCommand()    {}
func (ShowWar) isCommand()      {}
func (ShowRole) isCommand()     {}
func (SetRole) isCommand()      {}
func (RemoveRole) isCommand()   {}
func (SyncWar) isCommand()      {}
