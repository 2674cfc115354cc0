package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// TicketRepository implements secondary.TicketRepository with SQLite.
type TicketRepository struct {
	db DBTX
}

var _ secondary.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new SQLite ticket repository.
func NewTicketRepository(db DBTX) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `ticket_number, war_number,
	destination_map_name, destination_x, destination_y, destination_description,
	origin_map_name, origin_x, origin_y, origin_description,
	objective_description, created_on`

// Insert persists a ticket and returns its number. An origin missing its
// map name or description is stored as absent.
func (r *TicketRepository) Insert(ctx context.Context, ticket *secondary.TicketRecord) (int64, error) {
	var (
		originMap  sql.NullString
		originX    sql.NullFloat64
		originY    sql.NullFloat64
		originDesc sql.NullString
	)
	if o := ticket.Origin; o != nil && o.MapName != "" && o.Description != "" {
		originMap = sql.NullString{String: o.MapName, Valid: true}
		originX = sql.NullFloat64{Float64: o.X, Valid: true}
		originY = sql.NullFloat64{Float64: o.Y, Valid: true}
		originDesc = sql.NullString{String: o.Description, Valid: true}
	}

	createdOn := ticket.CreatedOn
	if createdOn.IsZero() {
		createdOn = time.Now()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (war_number,
			destination_map_name, destination_x, destination_y, destination_description,
			origin_map_name, origin_x, origin_y, origin_description,
			objective_description, created_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.WarNumber,
		ticket.Destination.MapName, ticket.Destination.X, ticket.Destination.Y, ticket.Destination.Description,
		originMap, originX, originY, originDesc,
		ticket.ObjectiveDescription, createdOn.UTC(),
	)
	if err != nil {
		return 0, classify(err, "failed to insert ticket for war #%d", ticket.WarNumber)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read ticket number: %w", err)
	}
	return id, nil
}

// GetByNumber retrieves a ticket by its number.
func (r *TicketRepository) GetByNumber(ctx context.Context, ticketNumber int64) (*secondary.TicketRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE ticket_number = ?",
		ticketNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	defer rows.Close()

	var found []*secondary.TicketRecord
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, apperr.New(apperr.NotFound, "ticket #%d not found", ticketNumber)
	case 1:
		return found[0], nil
	default:
		return nil, apperr.New(apperr.DataCorruption, "%d rows share ticket number %d", len(found), ticketNumber)
	}
}

// ListByWar retrieves the tickets filed in a war, newest first.
func (r *TicketRepository) ListByWar(ctx context.Context, warNumber int) ([]*secondary.TicketRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE war_number = ? ORDER BY ticket_number DESC",
		warNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*secondary.TicketRecord
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

func scanTicket(rows *sql.Rows) (*secondary.TicketRecord, error) {
	var (
		originMap  sql.NullString
		originX    sql.NullFloat64
		originY    sql.NullFloat64
		originDesc sql.NullString
	)

	t := &secondary.TicketRecord{}
	err := rows.Scan(&t.TicketNumber, &t.WarNumber,
		&t.Destination.MapName, &t.Destination.X, &t.Destination.Y, &t.Destination.Description,
		&originMap, &originX, &originY, &originDesc,
		&t.ObjectiveDescription, &t.CreatedOn,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	if originMap.Valid {
		t.Origin = &secondary.LocationRecord{
			MapName:     originMap.String,
			X:           originX.Float64,
			Y:           originY.Float64,
			Description: originDesc.String,
		}
	}
	return t, nil
}
