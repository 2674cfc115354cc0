package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// TicketAdapter translates ticket operations to the CLI.
type TicketAdapter struct {
	tickets primary.TicketService
	out     io.Writer
}

// NewTicketAdapter creates a new TicketAdapter.
func NewTicketAdapter(tickets primary.TicketService, out io.Writer) *TicketAdapter {
	return &TicketAdapter{tickets: tickets, out: out}
}

// Create files a ticket.
func (a *TicketAdapter) Create(ctx context.Context, req primary.CreateTicketRequest) error {
	resp, err := a.tickets.CreateTicket(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Created ticket #%d for war #%d\n", okMark(), resp.TicketNumber, resp.Ticket.WarNumber)
	if resp.OriginDropped {
		fmt.Fprintf(a.out, "%s Origin was incomplete and has been left off\n", warnMark())
	}
	return nil
}

// Show prints one ticket.
func (a *TicketAdapter) Show(ctx context.Context, number int64) error {
	t, err := a.tickets.GetTicket(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get ticket: %w", err)
	}

	fmt.Fprintf(a.out, "\nTicket:      #%d\n", t.Number)
	fmt.Fprintf(a.out, "War:         #%d\n", t.WarNumber)
	fmt.Fprintf(a.out, "Destination: %s\n", formatLocation(t.Destination))
	if t.Origin != nil {
		fmt.Fprintf(a.out, "Origin:      %s\n", formatLocation(*t.Origin))
	}
	fmt.Fprintf(a.out, "Objective:   %s\n", t.Objective)
	fmt.Fprintf(a.out, "Created:     %s\n", t.CreatedOn.UTC().Format(TimeLayout))
	fmt.Fprintln(a.out)
	return nil
}

// List prints the latest war's tickets.
func (a *TicketAdapter) List(ctx context.Context) error {
	tickets, err := a.tickets.ListTickets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tickets: %w", err)
	}

	if len(tickets) == 0 {
		fmt.Fprintln(a.out, "No tickets found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-16s %s\n", "#", "DESTINATION", "OBJECTIVE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, t := range tickets {
		fmt.Fprintf(a.out, "%-6d %-16s %s\n", t.Number, t.Destination.MapName, t.Objective)
	}
	fmt.Fprintln(a.out)
	return nil
}

func formatLocation(l primary.Location) string {
	return fmt.Sprintf("%s (%s %.4f, %.4f)", l.Description, l.MapName, l.X, l.Y)
}
