// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// TimeLayout is how timestamps are printed.
const TimeLayout = "2006-01-02 15:04 MST"

func okMark() string   { return color.New(color.FgGreen).Sprint("✓") }
func warnMark() string { return color.New(color.FgYellow).Sprint("!") }

// WarAdapter translates war sync and status operations to the CLI.
type WarAdapter struct {
	sync primary.WarSyncService
	maps primary.MapService
	out  io.Writer
}

// NewWarAdapter creates a new WarAdapter.
func NewWarAdapter(sync primary.WarSyncService, maps primary.MapService, out io.Writer) *WarAdapter {
	return &WarAdapter{sync: sync, maps: maps, out: out}
}

// Init prepares an empty database and ingests the current war.
func (a *WarAdapter) Init(ctx context.Context) error {
	result, err := a.sync.ExecuteColdStart(ctx)
	if err != nil {
		return fmt.Errorf("cold start failed: %w", err)
	}
	a.printSync(result)
	return nil
}

// Sync ingests the current war if it is newer than the latest on record.
func (a *WarAdapter) Sync(ctx context.Context) error {
	result, err := a.sync.SyncWar(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	a.printSync(result)
	return nil
}

func (a *WarAdapter) printSync(r *primary.SyncResult) {
	if r.Skipped {
		fmt.Fprintf(a.out, "%s War #%d already recorded; nothing to sync\n", warnMark(), r.PreviousWar)
		return
	}

	fmt.Fprintf(a.out, "%s Synced war #%d\n", okMark(), r.WarNumber)
	if r.HadBaseline {
		fmt.Fprintf(a.out, "  Previous: war #%d\n", r.PreviousWar)
	}
	fmt.Fprintf(a.out, "  Hexes:    %d\n", r.Maps)
	fmt.Fprintf(a.out, "  Labels:   %d\n", r.Labels)
	fmt.Fprintf(a.out, "  Icons:    %d\n", r.Icons)
	fmt.Fprintf(a.out, "  Run:      %s (%s)\n", r.RunID, r.Duration.Round(time.Millisecond))
}

// Status prints a summary of the latest war.
func (a *WarAdapter) Status(ctx context.Context) error {
	status, err := a.maps.Status(ctx)
	if err != nil {
		return err
	}

	if status.War == nil {
		fmt.Fprintf(a.out, "%s No war recorded. Run 'pfltk init' first.\n", warnMark())
		return nil
	}

	fmt.Fprintf(a.out, "\nWar #%d\n", status.War.Number)
	fmt.Fprintf(a.out, "Observed: %s\n", status.War.ObservedAt.UTC().Format(TimeLayout))
	fmt.Fprintf(a.out, "Hexes:    %d\n", status.Maps)
	fmt.Fprintf(a.out, "Labels:   %d\n", status.Labels)
	fmt.Fprintf(a.out, "Icons:    %d\n", status.Icons)
	fmt.Fprintf(a.out, "Tickets:  %d\n", status.Tickets)
	fmt.Fprintln(a.out)
	return nil
}

// War prints the latest war number only.
func (a *WarAdapter) War(ctx context.Context) error {
	war, err := a.maps.CurrentWar(ctx)
	if err != nil {
		return err
	}
	if war == nil {
		fmt.Fprintln(a.out, "No war recorded")
		return nil
	}
	fmt.Fprintf(a.out, "%d\n", war.Number)
	return nil
}
