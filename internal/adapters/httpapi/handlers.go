package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/core/role"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// Mutating routes identify the acting user with these headers.
const (
	HeaderUserID = "X-User-ID"
	HeaderGuild  = "X-Guild"
)

// actor reads the acting user and authorizes them for action.
func actor(c *gin.Context, users primary.UserService, action role.Action) (int64, string, error) {
	raw := c.GetHeader(HeaderUserID)
	guild := c.GetHeader(HeaderGuild)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || guild == "" {
		return 0, "", apperr.New(apperr.PermissionDenied, "%s and %s headers are required", HeaderUserID, HeaderGuild)
	}
	if err := users.Authorize(c.Request.Context(), userID, guild, action, ""); err != nil {
		return 0, "", err
	}
	return userID, guild, nil
}

type mapHandler struct {
	maps   primary.MapService
	logger logrus.FieldLogger
}

type warDTO struct {
	WarNumber  int       `json:"war_number"`
	ObservedAt time.Time `json:"observed_at"`
	Maps       int       `json:"maps"`
	Labels     int       `json:"labels"`
	Icons      int       `json:"icons"`
	Tickets    int       `json:"tickets"`
}

// War serves GET /api/war.
func (h *mapHandler) War(c *gin.Context) {
	status, err := h.maps.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	if status.War == nil {
		abortWithError(c, h.logger, apperr.New(apperr.NoData, "no war has been recorded"))
		return
	}

	c.JSON(http.StatusOK, warDTO{
		WarNumber:  status.War.Number,
		ObservedAt: status.War.ObservedAt,
		Maps:       status.Maps,
		Labels:     status.Labels,
		Icons:      status.Icons,
		Tickets:    status.Tickets,
	})
}

// ListMaps serves GET /api/maps.
func (h *mapHandler) ListMaps(c *gin.Context) {
	maps, err := h.maps.LatestMaps(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	names := make([]string, len(maps))
	war := 0
	for i, m := range maps {
		names[i] = m.Name
		war = m.WarNumber
	}
	c.JSON(http.StatusOK, gin.H{"war_number": war, "maps": names})
}

type labelDTO struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}

// ListLabels serves GET /api/maps/:map/labels.
func (h *mapHandler) ListLabels(c *gin.Context) {
	labels, err := h.maps.LatestLabels(c.Request.Context(), c.Param("map"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	out := make([]labelDTO, len(labels))
	for i, l := range labels {
		out[i] = labelDTO{Text: l.Text, X: l.X, Y: l.Y, Kind: l.Kind}
	}
	c.JSON(http.StatusOK, out)
}

type iconDTO struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	IconType    int     `json:"icon_type"`
	TypeName    string  `json:"type_name,omitempty"`
	Flags       int     `json:"flags"`
	FlagNames   string  `json:"flag_names"`
	Description string  `json:"description"`
}

// ListIcons serves GET /api/maps/:map/icons.
func (h *mapHandler) ListIcons(c *gin.Context) {
	icons, err := h.maps.LatestIcons(c.Request.Context(), c.Param("map"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	out := make([]iconDTO, len(icons))
	for i, icon := range icons {
		out[i] = iconDTO{
			X:           icon.X,
			Y:           icon.Y,
			IconType:    icon.IconType,
			TypeName:    icon.TypeName,
			Flags:       icon.Flags,
			FlagNames:   icon.FlagNames,
			Description: icon.Description,
		}
	}
	c.JSON(http.StatusOK, out)
}

type ticketHandler struct {
	tickets primary.TicketService
	maps    primary.MapService
	users   primary.UserService
	logger  logrus.FieldLogger
}

type locationDTO struct {
	MapName     string  `json:"map_name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Description string  `json:"description"`
}

type originDTO struct {
	MapName     *string  `json:"map_name"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Description *string  `json:"description"`
}

type ticketDTO struct {
	TicketNumber int64        `json:"ticket_number"`
	WarNumber    int          `json:"war_number"`
	Destination  locationDTO  `json:"destination"`
	Origin       *locationDTO `json:"origin,omitempty"`
	Objective    string       `json:"objective"`
	CreatedOn    time.Time    `json:"created_on"`
}

type createTicketBody struct {
	WarNumber           *int        `json:"war_number"` // absent means the current war
	Destination         locationDTO `json:"destination"`
	Origin              originDTO   `json:"origin"`
	Objective           string      `json:"objective"`
	ResolveDescriptions bool        `json:"resolve_descriptions"`
}

func toTicketDTO(t *primary.Ticket) ticketDTO {
	dto := ticketDTO{
		TicketNumber: t.Number,
		WarNumber:    t.WarNumber,
		Destination:  locationDTO(t.Destination),
		Objective:    t.Objective,
		CreatedOn:    t.CreatedOn,
	}
	if t.Origin != nil {
		o := locationDTO(*t.Origin)
		dto.Origin = &o
	}
	return dto
}

// List serves GET /api/tickets.
func (h *ticketHandler) List(c *gin.Context) {
	tickets, err := h.tickets.ListTickets(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	out := make([]ticketDTO, len(tickets))
	for i, t := range tickets {
		out[i] = toTicketDTO(t)
	}
	c.JSON(http.StatusOK, out)
}

// Get serves GET /api/tickets/:id.
func (h *ticketHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, h.logger, apperr.New(apperr.InvalidArgument, "%q is not a ticket number", c.Param("id")))
		return
	}

	ticket, err := h.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTicketDTO(ticket))
}

// Create serves POST /api/tickets.
func (h *ticketHandler) Create(c *gin.Context) {
	if _, _, err := actor(c, h.users, role.ActionCreateTicket); err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	var body createTicketBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, h.logger, apperr.Wrap(apperr.InvalidArgument, err, "malformed ticket body"))
		return
	}

	ctx := c.Request.Context()
	var warNumber int
	if body.WarNumber != nil {
		warNumber = *body.WarNumber
	} else {
		war, err := h.maps.CurrentWar(ctx)
		if err != nil {
			abortWithError(c, h.logger, err)
			return
		}
		if war != nil {
			warNumber = war.Number
		}
	}

	resp, err := h.tickets.CreateTicket(ctx, primary.CreateTicketRequest{
		WarNumber:   warNumber,
		Destination: primary.Location(body.Destination),
		Origin: primary.OriginInput{
			MapName:     body.Origin.MapName,
			X:           body.Origin.X,
			Y:           body.Origin.Y,
			Description: body.Origin.Description,
		},
		Objective:           body.Objective,
		ResolveDescriptions: body.ResolveDescriptions,
	})
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ticket":         toTicketDTO(resp.Ticket),
		"origin_dropped": resp.OriginDropped,
	})
}

type syncHandler struct {
	sync   primary.WarSyncService
	users  primary.UserService
	logger logrus.FieldLogger
}

// Sync serves POST /api/sync.
func (h *syncHandler) Sync(c *gin.Context) {
	if _, _, err := actor(c, h.users, role.ActionSync); err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	result, err := h.sync.SyncWar(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":       result.RunID,
		"war_number":   result.WarNumber,
		"previous_war": result.PreviousWar,
		"skipped":      result.Skipped,
		"maps":         result.Maps,
		"labels":       result.Labels,
		"icons":        result.Icons,
	})
}

type commandHandler struct {
	commands primary.CommandService
	logger   logrus.FieldLogger
}

type commandBody struct {
	UserID  int64  `json:"user_id" binding:"required"`
	Guild   string `json:"guild" binding:"required"`
	Channel string `json:"channel"`
	Content string `json:"content" binding:"required"`
}

// Execute serves POST /api/commands, the chat webhook.
func (h *commandHandler) Execute(c *gin.Context) {
	var body commandBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, h.logger, apperr.Wrap(apperr.InvalidArgument, err, "malformed command body"))
		return
	}

	reply, err := h.commands.Execute(c.Request.Context(), primary.CommandRequest{
		UserID:  body.UserID,
		Guild:   body.Guild,
		Channel: body.Channel,
		Content: body.Content,
	})
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      reply.ID,
		"command": reply.Command,
		"outcome": reply.Outcome,
		"reply":   reply.Text,
	})
}
