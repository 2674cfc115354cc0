package primary

import (
	"context"
	"time"
)

// TicketService defines the primary port for logistics tickets.
type TicketService interface {
	// CreateTicket validates and files a ticket against the current war.
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*CreateTicketResponse, error)

	// GetTicket retrieves a ticket by number.
	GetTicket(ctx context.Context, ticketNumber int64) (*Ticket, error)

	// ListTickets lists the tickets filed in the latest war, newest first.
	ListTickets(ctx context.Context) ([]*Ticket, error)
}

// Location is a point on a hex.
type Location struct {
	MapName     string
	X           float64
	Y           float64
	Description string
}

// OriginInput holds the optional origin fields as entered. Any subset may
// be set; anything short of all four drops the origin.
type OriginInput struct {
	MapName     *string
	X           *float64
	Y           *float64
	Description *string
}

// CreateTicketRequest contains parameters for creating a ticket.
type CreateTicketRequest struct {
	WarNumber   int
	Destination Location
	Origin      OriginInput
	Objective   string

	// ResolveDescriptions fills blank location descriptions from the
	// nearest label before validation.
	ResolveDescriptions bool
}

// CreateTicketResponse contains the result of creating a ticket.
type CreateTicketResponse struct {
	TicketNumber  int64
	Ticket        *Ticket
	OriginDropped bool // some origin fields were given but not all four
}

// Ticket is a filed logistics ticket.
type Ticket struct {
	Number      int64
	WarNumber   int
	Destination Location
	Origin      *Location
	Objective   string
	CreatedOn   time.Time
}
