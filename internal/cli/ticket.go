package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/command"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// TicketCmd returns the ticket command
func TicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage logistics tickets",
		Long:  "Create, show and list logistics tickets filed against the current war",
	}
	cmd.AddCommand(ticketCreateCmd())
	cmd.AddCommand(ticketShowCmd())
	cmd.AddCommand(ticketListCmd())
	return cmd
}

func ticketCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a ticket against the current war",
		Long: `File a logistics ticket.

Locations are written Hex:x:y with coordinates in [0, 1]. The origin is
optional and all-or-nothing: unless --origin and --origin-desc are both
given it is left off. Blank descriptions are filled from the nearest label
when --resolve is set.

Examples:
  pfltk ticket create --dest "TheFingersHex:0.42:0.5" --resolve --objective "Bmats to the depot"
  pfltk ticket create --dest "DeadLandsHex:0.5:0.5" --dest-desc "the Keep" \
      --origin "CallahansPassageHex:0.2:0.7" --origin-desc "the Seaport" --objective "Shirts"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := ticketRequestFromFlags(cmd)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				if !cmd.Flags().Changed("war") {
					war, err := rt.app.Maps.CurrentWar(ctx)
					if err != nil {
						return err
					}
					if war != nil {
						req.WarNumber = war.Number
					}
				}
				return rt.app.TicketAdapter(cmd.OutOrStdout()).Create(ctx, req)
			})
		},
	}

	cmd.Flags().Int("war", 0, "war number (default: the current war)")
	cmd.Flags().String("dest", "", "destination as Hex:x:y")
	cmd.Flags().String("dest-desc", "", "destination description")
	cmd.Flags().String("origin", "", "origin as Hex:x:y")
	cmd.Flags().String("origin-desc", "", "origin description")
	cmd.Flags().String("objective", "", "what needs moving")
	cmd.Flags().Bool("resolve", false, "fill blank descriptions from the nearest label")
	cmd.MarkFlagRequired("dest")
	cmd.MarkFlagRequired("objective")

	return cmd
}

func ticketShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ticket-number]",
		Short: "Show ticket details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return apperr.New(apperr.InvalidArgument, "%q is not a ticket number", args[0])
			}

			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.TicketAdapter(cmd.OutOrStdout()).Show(ctx, number)
			})
		},
	}
}

func ticketListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the latest war's tickets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.TicketAdapter(cmd.OutOrStdout()).List(ctx)
			})
		},
	}
}

// ticketRequestFromFlags builds a CreateTicketRequest from the create flags.
func ticketRequestFromFlags(cmd *cobra.Command) (primary.CreateTicketRequest, error) {
	flags := cmd.Flags()
	war, _ := flags.GetInt("war")
	dest, _ := flags.GetString("dest")
	destDesc, _ := flags.GetString("dest-desc")
	objective, _ := flags.GetString("objective")
	resolve, _ := flags.GetBool("resolve")

	mapName, x, y, err := command.ParsePoint(dest)
	if err != nil {
		return primary.CreateTicketRequest{}, fmt.Errorf("invalid --dest: %w", err)
	}

	req := primary.CreateTicketRequest{
		WarNumber:           war,
		Destination:         primary.Location{MapName: mapName, X: x, Y: y, Description: destDesc},
		Objective:           objective,
		ResolveDescriptions: resolve,
	}

	if flags.Changed("origin") {
		origin, _ := flags.GetString("origin")
		mapName, x, y, err := command.ParsePoint(origin)
		if err != nil {
			return primary.CreateTicketRequest{}, fmt.Errorf("invalid --origin: %w", err)
		}
		req.Origin.MapName = &mapName
		req.Origin.X = &x
		req.Origin.Y = &y
	}
	if flags.Changed("origin-desc") {
		desc, _ := flags.GetString("origin-desc")
		req.Origin.Description = &desc
	}

	return req, nil
}
