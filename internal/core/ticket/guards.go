// Package ticket contains the pure business logic for logistics tickets.
// Guards are pure functions that evaluate preconditions without side effects.
package ticket

import (
	"fmt"
	"strings"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    apperr.Kind
	Reason  string
}

// Error converts the guard result to a typed error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.New(r.Kind, "%s", r.Reason)
}

func deny(kind apperr.Kind, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Location is a fully specified point on a hex.
type Location struct {
	MapName     string
	X           float64
	Y           float64
	Description string
}

// OriginDraft holds the origin fields as entered by a user. Any of them may
// be missing.
type OriginDraft struct {
	MapName     *string
	X           *float64
	Y           *float64
	Description *string
}

// Present reports how many of the four origin fields are set. Blank strings
// count as missing.
func (d OriginDraft) Present() int {
	n := 0
	if d.MapName != nil && strings.TrimSpace(*d.MapName) != "" {
		n++
	}
	if d.X != nil {
		n++
	}
	if d.Y != nil {
		n++
	}
	if d.Description != nil && strings.TrimSpace(*d.Description) != "" {
		n++
	}
	return n
}

// NormalizeOrigin returns the origin only when all four fields are present.
// A partially filled origin is dropped rather than rejected.
func NormalizeOrigin(d OriginDraft) *Location {
	if d.Present() != 4 {
		return nil
	}
	return &Location{
		MapName:     strings.TrimSpace(*d.MapName),
		X:           *d.X,
		Y:           *d.Y,
		Description: strings.TrimSpace(*d.Description),
	}
}

// CreateTicketContext provides context for ticket creation guards.
type CreateTicketContext struct {
	WarNumber    int
	LatestWar    int
	HasLatestWar bool

	Destination          Location
	DestinationMapExists bool

	Origin          *Location // already normalized; nil when absent
	OriginMapExists bool

	Objective string
}

// CanCreateTicket evaluates whether a ticket can be created.
// Rules:
// - A war must be on record and the ticket must target exactly that war
// - Destination and objective must be filled in, coordinates within the hex
// - Destination map must exist in the ticket's war
// - A present origin's map must exist in the ticket's war
func CanCreateTicket(ctx CreateTicketContext) GuardResult {
	if !ctx.HasLatestWar {
		return deny(apperr.CannotCreateTicketForWar,
			"cannot file a ticket for war #%d: no war has been synchronized yet", ctx.WarNumber)
	}
	if ctx.WarNumber != ctx.LatestWar {
		return deny(apperr.CannotCreateTicketForWar,
			"cannot file a ticket for war #%d: tickets may only be filed against the current war #%d", ctx.WarNumber, ctx.LatestWar)
	}

	if strings.TrimSpace(ctx.Destination.MapName) == "" {
		return deny(apperr.InvalidArgument, "a destination map is required")
	}
	if strings.TrimSpace(ctx.Objective) == "" {
		return deny(apperr.InvalidArgument, "an objective is required")
	}
	if !InUnitSquare(ctx.Destination.X, ctx.Destination.Y) {
		return deny(apperr.InvalidArgument,
			"destination (%g, %g) is outside the hex; coordinates run from 0 to 1", ctx.Destination.X, ctx.Destination.Y)
	}
	if !ctx.DestinationMapExists {
		return deny(apperr.MapNotFound, "map %s does not exist in war #%d", ctx.Destination.MapName, ctx.WarNumber)
	}

	if ctx.Origin != nil {
		if !InUnitSquare(ctx.Origin.X, ctx.Origin.Y) {
			return deny(apperr.InvalidArgument,
				"origin (%g, %g) is outside the hex; coordinates run from 0 to 1", ctx.Origin.X, ctx.Origin.Y)
		}
		if !ctx.OriginMapExists {
			return deny(apperr.MapNotFound, "map %s does not exist in war #%d", ctx.Origin.MapName, ctx.WarNumber)
		}
	}

	return GuardResult{Allowed: true}
}

// InUnitSquare reports whether (x, y) lies within a hex's relative coordinates.
func InUnitSquare(x, y float64) bool {
	return x >= 0 && x <= 1 && y >= 0 && y <= 1
}
