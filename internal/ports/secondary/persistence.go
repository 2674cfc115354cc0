// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// WarRepository defines the secondary port for war persistence.
type WarRepository interface {
	// Insert records a new war. Rejects negative numbers, duplicates and
	// any war older than the latest one on record.
	Insert(ctx context.Context, war *WarRecord) error

	// Latest returns the war with the highest number, or nil when none exist.
	Latest(ctx context.Context) (*WarRecord, error)

	// CountMapData returns summary counts of everything recorded for a war.
	CountMapData(ctx context.Context, warNumber int) (*MapDataCounts, error)
}

// WarRecord represents a war as stored in persistence.
type WarRecord struct {
	WarNumber  int
	ObservedAt time.Time
}

// MapDataCounts summarizes the rows recorded for one war.
type MapDataCounts struct {
	WarNumber int
	Maps      int
	Labels    int
	Icons     int
	Tickets   int
}

// MapRepository defines the secondary port for hex persistence.
type MapRepository interface {
	// Insert records a hex for a war.
	Insert(ctx context.Context, m *MapRecord) error

	// Latest returns the hexes of the latest war. NoData when no hex has ever
	// been recorded, StaleData when none belong to the latest war.
	Latest(ctx context.Context) ([]*MapRecord, error)

	// Exists reports whether a hex was recorded for the given war.
	Exists(ctx context.Context, mapName string, warNumber int) (bool, error)

	// LastSeenWar returns the most recent war a hex was recorded in, or 0.
	LastSeenWar(ctx context.Context, mapName string) (int, error)
}

// MapRecord represents a hex as stored in persistence.
type MapRecord struct {
	MapName   string
	WarNumber int
}

// Label kinds as reported by the map data source.
const (
	LabelKindMajor = "Major"
	LabelKindMinor = "Minor"
)

// LabelRepository defines the secondary port for label persistence.
type LabelRepository interface {
	// Insert records a label on a hex.
	Insert(ctx context.Context, label *LabelRecord) error

	// LatestForMap returns the labels of a hex in the latest war.
	// NotFound when there are none, NoData when no war exists.
	LatestForMap(ctx context.Context, mapName string) ([]*LabelRecord, error)
}

// LabelRecord represents a label as stored in persistence.
type LabelRecord struct {
	MapName   string
	WarNumber int
	Label     string
	X         float64
	Y         float64
	Kind      string
}

// IconRepository defines the secondary port for icon persistence.
type IconRepository interface {
	// Insert records an icon on a hex.
	Insert(ctx context.Context, icon *IconRecord) error

	// LatestForMap returns the icons of a hex in the latest war.
	// MapNotInCurrentWar when the hex isn't part of it.
	LatestForMap(ctx context.Context, mapName string) ([]*IconRecord, error)
}

// IconRecord represents an icon as stored in persistence.
type IconRecord struct {
	MapName   string
	WarNumber int
	X         float64
	Y         float64
	IconType  int
	Flags     int
}

// TicketRepository defines the secondary port for ticket persistence.
type TicketRepository interface {
	// Insert persists a ticket and returns its number.
	Insert(ctx context.Context, ticket *TicketRecord) (int64, error)

	// GetByNumber retrieves a ticket by its number.
	GetByNumber(ctx context.Context, ticketNumber int64) (*TicketRecord, error)

	// ListByWar retrieves the tickets filed in a war, newest first.
	ListByWar(ctx context.Context, warNumber int) ([]*TicketRecord, error)
}

// LocationRecord is a point on a hex with a human readable description.
type LocationRecord struct {
	MapName     string
	X           float64
	Y           float64
	Description string
}

// TicketRecord represents a ticket as stored in persistence.
type TicketRecord struct {
	TicketNumber         int64
	WarNumber            int
	Destination          LocationRecord
	Origin               *LocationRecord // nil when the ticket has no origin
	ObjectiveDescription string
	CreatedOn            time.Time
}

// UserRepository defines the secondary port for user role persistence.
type UserRepository interface {
	// UpsertRole sets a user's role in a guild.
	UpsertRole(ctx context.Context, user *UserRoleRecord) error

	// GetRole retrieves a user's role in a guild. NotFound when unset.
	GetRole(ctx context.Context, userID int64, guild string) (*UserRoleRecord, error)

	// DeleteRole removes a user's role in a guild. NotFound when unset.
	DeleteRole(ctx context.Context, userID int64, guild string) error
}

// UserRoleRecord represents a user's role as stored in persistence.
type UserRoleRecord struct {
	UserID    int64
	Guild     string
	Role      string
	UpdatedAt time.Time
}

// CommandRepository defines the secondary port for the command audit log.
type CommandRepository interface {
	// Insert appends a command to the audit log.
	Insert(ctx context.Context, command *CommandRecord) error

	// ListRecent returns the most recent commands for a guild, newest first.
	ListRecent(ctx context.Context, guild string, limit int) ([]*CommandRecord, error)
}

// Command outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// CommandRecord represents an audited chat command.
type CommandRecord struct {
	ID        string
	Command   string
	UserID    int64
	Guild     string
	Channel   string
	Content   string
	Outcome   string
	CreatedAt time.Time
}

// IconTypeRepository defines the secondary port for the icon type codebook.
type IconTypeRepository interface {
	// Seed upserts the codebook entries.
	Seed(ctx context.Context, types []IconTypeRecord) error

	// Name returns the display name for an icon type, or "" when unknown.
	Name(ctx context.Context, iconType int) (string, error)
}

// IconTypeRecord is one codebook entry.
type IconTypeRecord struct {
	IconType int
	Name     string
}
