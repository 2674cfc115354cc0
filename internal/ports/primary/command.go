package primary

import "context"

// CommandService defines the primary port for chat commands.
type CommandService interface {
	// Execute parses, authorizes, runs and audits one chat message.
	// Command failures are explained in the reply; the error return is
	// reserved for failures to record the command.
	Execute(ctx context.Context, req CommandRequest) (*CommandReply, error)
}

// CommandRequest is an incoming chat message.
type CommandRequest struct {
	UserID  int64
	Guild   string
	Channel string
	Content string
}

// CommandReply is the dispatcher's answer to a chat message.
type CommandReply struct {
	ID      string // audit id
	Command string // parsed command name, empty when parsing failed
	Outcome string // ok, rejected or error
	Text    string
}
