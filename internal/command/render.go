package command

import (
	"fmt"
	"strings"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// RenderTicket renders a ticket for chat.
func RenderTicket(t *primary.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket #%d (war #%d)\n", t.Number, t.WarNumber)
	fmt.Fprintf(&b, "  Deliver to: %s\n", renderLocation(t.Destination))
	if t.Origin != nil {
		fmt.Fprintf(&b, "  Pick up at: %s\n", renderLocation(*t.Origin))
	}
	fmt.Fprintf(&b, "  Objective:  %s\n", t.Objective)
	fmt.Fprintf(&b, "  Filed:      %s", t.CreatedOn.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}

// RenderCreated renders the reply to a filed ticket.
func RenderCreated(resp *primary.CreateTicketResponse) string {
	text := fmt.Sprintf("Filed ticket #%d.\n%s", resp.TicketNumber, RenderTicket(resp.Ticket))
	if resp.OriginDropped {
		text += "\nNote: the pickup location was incomplete and has been left off."
	}
	return text
}

// RenderTickets renders a ticket list.
func RenderTickets(tickets []*primary.Ticket) string {
	if len(tickets) == 0 {
		return "No tickets have been filed this war."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d ticket(s) this war:", len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&b, "\n  #%d  %s  -> %s", t.Number, t.Objective, t.Destination.Description)
	}
	return b.String()
}

// RenderMaps renders the current war's hexes.
func RenderMaps(maps []*primary.Map) string {
	if len(maps) == 0 {
		return "No hexes are recorded for the current war."
	}

	names := make([]string, len(maps))
	for i, m := range maps {
		names[i] = m.Name
	}
	return fmt.Sprintf("War #%d has %d hexes: %s", maps[0].WarNumber, len(maps), strings.Join(names, ", "))
}

// RenderIcons renders a hex's icons.
func RenderIcons(mapName string, icons []*primary.Icon) string {
	if len(icons) == 0 {
		return fmt.Sprintf("%s has no icons.", mapName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d icon(s):", mapName, len(icons))
	for _, icon := range icons {
		fmt.Fprintf(&b, "\n  (%.3f, %.3f) %s", icon.X, icon.Y, icon.Description)
		if icon.Flags != 0 {
			fmt.Fprintf(&b, " [%s]", icon.FlagNames)
		}
	}
	return b.String()
}

// RenderStatus renders the latest war summary.
func RenderStatus(s *primary.Status) string {
	if s.War == nil {
		return "No war has been recorded yet."
	}
	return fmt.Sprintf("War #%d, observed %s: %d hexes, %d labels, %d icons, %d tickets.",
		s.War.Number, s.War.ObservedAt.UTC().Format("2006-01-02 15:04 MST"),
		s.Maps, s.Labels, s.Icons, s.Tickets)
}

// RenderRole renders a user's role.
func RenderRole(r *primary.UserRole) string {
	return fmt.Sprintf("User %d is %s in %s.", r.UserID, r.Role, r.Guild)
}

// RenderSync renders a sync outcome.
func RenderSync(r *primary.SyncResult) string {
	if r.Skipped {
		return fmt.Sprintf("War #%d is already up to date.", r.PreviousWar)
	}
	return fmt.Sprintf("Synced war #%d: %d hexes, %d labels, %d icons.", r.WarNumber, r.Maps, r.Labels, r.Icons)
}

// Explain turns an error into a reply a chat user can act on.
func Explain(err error) string {
	e, ok := apperr.As(err)
	if !ok {
		return "Something went wrong running that command."
	}

	switch e.Kind {
	case apperr.InvalidArgument:
		return "That command isn't quite right: " + e.Message
	case apperr.PermissionDenied:
		return "You don't have permission to do that: " + e.Message
	case apperr.CannotCreateTicketForWar:
		return "Tickets can only be filed for the current war. " + e.Message
	case apperr.MapNotFound, apperr.MapNotInCurrentWar:
		return "Unknown hex: " + e.Message
	case apperr.NotFound:
		return "Not found: " + e.Message
	case apperr.NoData:
		return "No war data has been synced yet. Ask a supervisor to run !sync."
	case apperr.StaleData:
		return "The stored map data is out of date. Ask a supervisor to run !sync."
	case apperr.StaleWar, apperr.AlreadyExists:
		return "That war is already recorded."
	case apperr.DataCorruption:
		return "Stored data is inconsistent; an administrator needs to look at it."
	}
	return "Something went wrong running that command."
}

func renderLocation(l primary.Location) string {
	if l.Description == "" {
		return fmt.Sprintf("%s (%.3f, %.3f)", l.MapName, l.X, l.Y)
	}
	return fmt.Sprintf("%s, %s (%.3f, %.3f)", l.Description, l.MapName, l.X, l.Y)
}
