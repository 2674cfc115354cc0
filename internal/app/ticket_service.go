package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	coreticket "github.com/tenth-speed-writer/PFLTK/internal/core/ticket"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// TicketServiceImpl implements the TicketService interface.
type TicketServiceImpl struct {
	store  secondary.Store
	maps   primary.MapService
	clock  clock.Clock
	logger logrus.FieldLogger
}

var _ primary.TicketService = (*TicketServiceImpl)(nil)

// NewTicketService creates a new TicketService with injected dependencies.
func NewTicketService(
	store secondary.Store,
	maps primary.MapService,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *TicketServiceImpl {
	return &TicketServiceImpl{
		store:  store,
		maps:   maps,
		clock:  clk,
		logger: logger,
	}
}

// CreateTicket validates and files a ticket against the current war.
func (s *TicketServiceImpl) CreateTicket(ctx context.Context, req primary.CreateTicketRequest) (*primary.CreateTicketResponse, error) {
	if req.ResolveDescriptions {
		if err := s.resolveDescriptions(ctx, &req); err != nil {
			return nil, err
		}
	}

	originDraft := coreticket.OriginDraft{
		MapName:     req.Origin.MapName,
		X:           req.Origin.X,
		Y:           req.Origin.Y,
		Description: req.Origin.Description,
	}
	origin := coreticket.NormalizeOrigin(originDraft)
	originDropped := origin == nil && originDraft.Present() > 0

	destination := coreticket.Location{
		MapName:     strings.TrimSpace(req.Destination.MapName),
		X:           req.Destination.X,
		Y:           req.Destination.Y,
		Description: strings.TrimSpace(req.Destination.Description),
	}

	var ticketNumber int64
	err := s.store.InTx(ctx, func(repos *secondary.Repositories) error {
		guardCtx := coreticket.CreateTicketContext{
			WarNumber:   req.WarNumber,
			Destination: destination,
			Origin:      origin,
			Objective:   req.Objective,
		}

		latest, err := repos.Wars.Latest(ctx)
		if err != nil {
			return err
		}
		if latest != nil {
			guardCtx.HasLatestWar = true
			guardCtx.LatestWar = latest.WarNumber
		}

		if guardCtx.HasLatestWar && destination.MapName != "" {
			guardCtx.DestinationMapExists, err = repos.Maps.Exists(ctx, destination.MapName, req.WarNumber)
			if err != nil {
				return err
			}
		}
		if guardCtx.HasLatestWar && origin != nil {
			guardCtx.OriginMapExists, err = repos.Maps.Exists(ctx, origin.MapName, req.WarNumber)
			if err != nil {
				return err
			}
		}

		if err := coreticket.CanCreateTicket(guardCtx).Error(); err != nil {
			return err
		}
		if destination.Description == "" {
			return apperr.New(apperr.InvalidArgument, "a destination description is required")
		}

		record := &secondary.TicketRecord{
			WarNumber:            req.WarNumber,
			Destination:          secondary.LocationRecord(destination),
			ObjectiveDescription: strings.TrimSpace(req.Objective),
			CreatedOn:            s.clock.Now(),
		}
		if origin != nil {
			o := secondary.LocationRecord(*origin)
			record.Origin = &o
		}

		ticketNumber, err = repos.Tickets.Insert(ctx, record)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	created, err := s.GetTicket(ctx, ticketNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created ticket: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ticket":         ticketNumber,
		"war":            req.WarNumber,
		"origin_dropped": originDropped,
	}).Info("ticket created")

	return &primary.CreateTicketResponse{
		TicketNumber:  ticketNumber,
		Ticket:        created,
		OriginDropped: originDropped,
	}, nil
}

// GetTicket retrieves a ticket by number.
func (s *TicketServiceImpl) GetTicket(ctx context.Context, ticketNumber int64) (*primary.Ticket, error) {
	record, err := s.store.Repos().Tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		if apperr.IsKind(err, apperr.DataCorruption) {
			s.logger.WithField("ticket", ticketNumber).WithError(err).Error("ticket storage is corrupt")
		}
		return nil, err
	}
	return s.recordToTicket(record), nil
}

// ListTickets lists the tickets filed in the latest war, newest first.
func (s *TicketServiceImpl) ListTickets(ctx context.Context) ([]*primary.Ticket, error) {
	var records []*secondary.TicketRecord
	err := s.store.InReadTx(ctx, func(repos *secondary.Repositories) error {
		latest, err := repos.Wars.Latest(ctx)
		if err != nil {
			return err
		}
		if latest == nil {
			return apperr.New(apperr.NoData, "no war has been recorded")
		}
		records, err = repos.Tickets.ListByWar(ctx, latest.WarNumber)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets := make([]*primary.Ticket, len(records))
	for i, r := range records {
		tickets[i] = s.recordToTicket(r)
	}
	return tickets, nil
}

// resolveDescriptions fills blank descriptions from nearest-label
// resolution. Maps that can't be described are left blank for the guards
// to reject.
func (s *TicketServiceImpl) resolveDescriptions(ctx context.Context, req *primary.CreateTicketRequest) error {
	if strings.TrimSpace(req.Destination.Description) == "" && req.Destination.MapName != "" {
		desc, err := s.describe(ctx, req.Destination.MapName, req.Destination.X, req.Destination.Y)
		if err != nil {
			return err
		}
		req.Destination.Description = desc
	}

	o := req.Origin
	if o.MapName != nil && o.X != nil && o.Y != nil && (o.Description == nil || strings.TrimSpace(*o.Description) == "") {
		desc, err := s.describe(ctx, *o.MapName, *o.X, *o.Y)
		if err != nil {
			return err
		}
		if desc != "" {
			req.Origin.Description = &desc
		}
	}
	return nil
}

func (s *TicketServiceImpl) describe(ctx context.Context, mapName string, x, y float64) (string, error) {
	desc, err := s.maps.DescribeLocation(ctx, mapName, x, y)
	switch apperr.KindOf(err) {
	case "":
		if err != nil {
			return "", err
		}
		return desc, nil
	case apperr.MapNotInCurrentWar, apperr.NoData, apperr.StaleData:
		return "", nil
	default:
		return "", err
	}
}

func (s *TicketServiceImpl) recordToTicket(r *secondary.TicketRecord) *primary.Ticket {
	t := &primary.Ticket{
		Number:      r.TicketNumber,
		WarNumber:   r.WarNumber,
		Destination: primary.Location(r.Destination),
		Objective:   r.ObjectiveDescription,
		CreatedOn:   r.CreatedOn,
	}
	if r.Origin != nil {
		o := primary.Location(*r.Origin)
		t.Origin = &o
	}
	return t
}
