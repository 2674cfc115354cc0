package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/command"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// CommandServiceImpl implements the CommandService interface.
type CommandServiceImpl struct {
	store   secondary.Store
	maps    primary.MapService
	tickets primary.TicketService
	users   primary.UserService
	sync    primary.WarSyncService
	clock   clock.Clock
	logger  logrus.FieldLogger
}

var _ primary.CommandService = (*CommandServiceImpl)(nil)

// NewCommandService creates a new CommandService with injected dependencies.
func NewCommandService(
	store secondary.Store,
	maps primary.MapService,
	tickets primary.TicketService,
	users primary.UserService,
	sync primary.WarSyncService,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *CommandServiceImpl {
	return &CommandServiceImpl{
		store:   store,
		maps:    maps,
		tickets: tickets,
		users:   users,
		sync:    sync,
		clock:   clk,
		logger:  logger,
	}
}

// Execute parses, authorizes, runs and audits one chat message.
func (s *CommandServiceImpl) Execute(ctx context.Context, req primary.CommandRequest) (*primary.CommandReply, error) {
	reply := &primary.CommandReply{ID: uuid.NewString()}
	log := s.logger.WithFields(logrus.Fields{
		"command_id": reply.ID,
		"user":       req.UserID,
		"guild":      req.Guild,
	})

	auditName := "invalid"
	cmd, err := command.Parse(req.Content)
	if err == nil {
		reply.Command = cmd.Name()
		auditName = cmd.Name()
		log = log.WithField("command", auditName)
		reply.Text, err = s.run(ctx, req, cmd)
	}

	switch kind := apperr.KindOf(err); {
	case err == nil:
		reply.Outcome = secondary.OutcomeOK
	case kind == "" || kind == apperr.DataCorruption:
		reply.Outcome = secondary.OutcomeError
		reply.Text = command.Explain(err)
		log.WithError(err).Error("command failed")
	default:
		reply.Outcome = secondary.OutcomeRejected
		reply.Text = command.Explain(err)
		log.WithError(err).Debug("command rejected")
	}

	record := &secondary.CommandRecord{
		ID:        reply.ID,
		Command:   auditName,
		UserID:    req.UserID,
		Guild:     req.Guild,
		Channel:   req.Channel,
		Content:   req.Content,
		Outcome:   reply.Outcome,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Repos().Commands.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record command: %w", err)
	}

	log.WithField("outcome", reply.Outcome).Info("command handled")
	return reply, nil
}

func (s *CommandServiceImpl) run(ctx context.Context, req primary.CommandRequest, cmd command.Command) (string, error) {
	switch cmd.(type) {
	case command.SetRole, command.RemoveRole:
		// the user service authorizes against the target role
	default:
		if err := s.users.Authorize(ctx, req.UserID, req.Guild, cmd.Action(), ""); err != nil {
			return "", err
		}
	}

	switch c := cmd.(type) {
	case command.CreateTicket:
		var war int
		if c.WarNumber != nil {
			war = *c.WarNumber
		} else {
			current, err := s.maps.CurrentWar(ctx)
			if err != nil {
				return "", err
			}
			if current != nil {
				war = current.Number
			}
		}
		resp, err := s.tickets.CreateTicket(ctx, primary.CreateTicketRequest{
			WarNumber:           war,
			Destination:         c.Destination,
			Origin:              c.Origin,
			Objective:           c.Objective,
			ResolveDescriptions: true,
		})
		if err != nil {
			return "", err
		}
		return command.RenderCreated(resp), nil

	case command.ShowTicket:
		ticket, err := s.tickets.GetTicket(ctx, c.Number)
		if err != nil {
			return "", err
		}
		return command.RenderTicket(ticket), nil

	case command.ListTickets:
		tickets, err := s.tickets.ListTickets(ctx)
		if err != nil {
			return "", err
		}
		return command.RenderTickets(tickets), nil

	case command.ListMaps:
		maps, err := s.maps.LatestMaps(ctx)
		if err != nil {
			return "", err
		}
		return command.RenderMaps(maps), nil

	case command.ListIcons:
		icons, err := s.maps.LatestIcons(ctx, c.MapName)
		if err != nil {
			return "", err
		}
		return command.RenderIcons(c.MapName, icons), nil

	case command.ShowWar:
		status, err := s.maps.Status(ctx)
		if err != nil {
			return "", err
		}
		return command.RenderStatus(status), nil

	case command.ShowRole:
		userID := c.UserID
		if userID == 0 {
			userID = req.UserID
		}
		r, err := s.users.GetRole(ctx, userID, req.Guild)
		if err != nil {
			return "", err
		}
		return command.RenderRole(r), nil

	case command.SetRole:
		r, err := s.users.SetRole(ctx, primary.SetRoleRequest{
			ActorID: req.UserID,
			Guild:   req.Guild,
			UserID:  c.UserID,
			Role:    c.Role,
		})
		if err != nil {
			return "", err
		}
		return command.RenderRole(r), nil

	case command.RemoveRole:
		err := s.users.RemoveRole(ctx, primary.RemoveRoleRequest{
			ActorID: req.UserID,
			Guild:   req.Guild,
			UserID:  c.UserID,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed user %d's role in %s.", c.UserID, req.Guild), nil

	case command.SyncWar:
		result, err := s.sync.SyncWar(ctx)
		if err != nil {
			return "", err
		}
		return command.RenderSync(result), nil
	}

	return "", fmt.Errorf("unhandled command %T", cmd)
}
