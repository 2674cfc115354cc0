package secondary

import "context"

// Repositories groups every repository bound to a single executor.
type Repositories struct {
	Wars      WarRepository
	Maps      MapRepository
	Labels    LabelRepository
	Icons     IconRepository
	Tickets   TicketRepository
	Users     UserRepository
	Commands  CommandRepository
	IconTypes IconTypeRepository
}

// Store owns the database handle and hands out repositories.
type Store interface {
	// Repos returns repositories running each statement on its own.
	Repos() *Repositories

	// InTx runs fn with repositories bound to one transaction. The
	// transaction commits only when fn returns nil.
	InTx(ctx context.Context, fn func(repos *Repositories) error) error

	// InReadTx runs fn against a consistent read snapshot. Nothing commits.
	InReadTx(ctx context.Context, fn func(repos *Repositories) error) error

	// EnsureSchema creates or migrates the schema. Idempotent.
	EnsureSchema(ctx context.Context) error
}
