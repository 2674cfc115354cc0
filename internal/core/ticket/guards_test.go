package ticket

import (
	"testing"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
)

func validContext() CreateTicketContext {
	return CreateTicketContext{
		WarNumber:            10,
		LatestWar:            10,
		HasLatestWar:         true,
		Destination:          Location{MapName: "FoobarHex", X: 0.25, Y: 0.30, Description: "front"},
		DestinationMapExists: true,
		Objective:            "Deliver bmats",
	}
}

func TestCanCreateTicket(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*CreateTicketContext)
		wantAllowed bool
		wantKind    apperr.Kind
		wantReason  string
	}{
		{
			name:        "can create ticket for current war",
			mutate:      func(*CreateTicketContext) {},
			wantAllowed: true,
		},
		{
			name:       "cannot create ticket for previous war",
			mutate:     func(c *CreateTicketContext) { c.WarNumber = 9 },
			wantKind:   apperr.CannotCreateTicketForWar,
			wantReason: "cannot file a ticket for war #9: tickets may only be filed against the current war #10",
		},
		{
			name:       "cannot create ticket for future war",
			mutate:     func(c *CreateTicketContext) { c.WarNumber = 11 },
			wantKind:   apperr.CannotCreateTicketForWar,
			wantReason: "cannot file a ticket for war #11: tickets may only be filed against the current war #10",
		},
		{
			name:       "cannot create ticket before any sync",
			mutate:     func(c *CreateTicketContext) { c.HasLatestWar = false },
			wantKind:   apperr.CannotCreateTicketForWar,
			wantReason: "cannot file a ticket for war #10: no war has been synchronized yet",
		},
		{
			name:       "cannot create ticket without objective",
			mutate:     func(c *CreateTicketContext) { c.Objective = "  " },
			wantKind:   apperr.InvalidArgument,
			wantReason: "an objective is required",
		},
		{
			name:       "cannot create ticket outside the hex",
			mutate:     func(c *CreateTicketContext) { c.Destination.X = 1.2 },
			wantKind:   apperr.InvalidArgument,
			wantReason: "destination (1.2, 0.3) is outside the hex; coordinates run from 0 to 1",
		},
		{
			name:       "cannot create ticket for missing destination map",
			mutate:     func(c *CreateTicketContext) { c.DestinationMapExists = false },
			wantKind:   apperr.MapNotFound,
			wantReason: "map FoobarHex does not exist in war #10",
		},
		{
			name: "cannot create ticket for missing origin map",
			mutate: func(c *CreateTicketContext) {
				c.Origin = &Location{MapName: "GoneHex", X: 0.5, Y: 0.5, Description: "o"}
				c.OriginMapExists = false
			},
			wantKind:   apperr.MapNotFound,
			wantReason: "map GoneHex does not exist in war #10",
		},
		{
			name: "can create ticket with valid origin",
			mutate: func(c *CreateTicketContext) {
				c.Origin = &Location{MapName: "DepotHex", X: 0.5, Y: 0.5, Description: "o"}
				c.OriginMapExists = true
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := validContext()
			tt.mutate(&ctx)

			result := CanCreateTicket(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if tt.wantAllowed {
				if err := result.Error(); err != nil {
					t.Errorf("Error() = %v, want nil", err)
				}
				return
			}
			if result.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", result.Kind, tt.wantKind)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if !apperr.IsKind(result.Error(), tt.wantKind) {
				t.Errorf("Error() kind = %q, want %q", apperr.KindOf(result.Error()), tt.wantKind)
			}
		})
	}
}

func TestNormalizeOrigin(t *testing.T) {
	name := "DepotHex"
	blank := " "
	x, y := 0.4, 0.6
	desc := "the Storage Depot near Port"

	tests := []struct {
		name  string
		draft OriginDraft
		want  *Location
	}{
		{name: "none present", draft: OriginDraft{}},
		{name: "only map", draft: OriginDraft{MapName: &name}},
		{name: "map and x", draft: OriginDraft{MapName: &name, X: &x}},
		{name: "three of four", draft: OriginDraft{MapName: &name, X: &x, Y: &y}},
		{name: "blank description counts as missing", draft: OriginDraft{MapName: &name, X: &x, Y: &y, Description: &blank}},
		{
			name:  "all four",
			draft: OriginDraft{MapName: &name, X: &x, Y: &y, Description: &desc},
			want:  &Location{MapName: "DepotHex", X: 0.4, Y: 0.6, Description: desc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOrigin(tt.draft)
			if tt.want == nil {
				if got != nil {
					t.Errorf("NormalizeOrigin() = %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("NormalizeOrigin() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
