package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// MapAdapter translates map lookups to the CLI.
type MapAdapter struct {
	maps primary.MapService
	out  io.Writer
}

// NewMapAdapter creates a new MapAdapter.
func NewMapAdapter(maps primary.MapService, out io.Writer) *MapAdapter {
	return &MapAdapter{maps: maps, out: out}
}

// Maps lists the latest war's hexes.
func (a *MapAdapter) Maps(ctx context.Context) error {
	maps, err := a.maps.LatestMaps(ctx)
	if err != nil {
		return fmt.Errorf("failed to list maps: %w", err)
	}
	if len(maps) == 0 {
		fmt.Fprintln(a.out, "No maps found")
		return nil
	}

	fmt.Fprintf(a.out, "\nWar #%d: %d hexes\n", maps[0].WarNumber, len(maps))
	fmt.Fprintln(a.out, "────────────────────────────────────────")
	for _, m := range maps {
		fmt.Fprintln(a.out, m.Name)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Labels lists a hex's labels.
func (a *MapAdapter) Labels(ctx context.Context, mapName string) error {
	labels, err := a.maps.LatestLabels(ctx, mapName)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	fmt.Fprintf(a.out, "\n%-30s %-6s %7s %7s\n", "LABEL", "KIND", "X", "Y")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────")
	for _, l := range labels {
		fmt.Fprintf(a.out, "%-30s %-6s %7.4f %7.4f\n", l.Text, l.Kind, l.X, l.Y)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Icons lists a hex's icons with their descriptions.
func (a *MapAdapter) Icons(ctx context.Context, mapName string) error {
	icons, err := a.maps.LatestIcons(ctx, mapName)
	if err != nil {
		return fmt.Errorf("failed to list icons: %w", err)
	}

	if len(icons) == 0 {
		fmt.Fprintf(a.out, "No icons on %s\n", mapName)
		return nil
	}

	fmt.Fprintf(a.out, "\n%7s %7s %-5s %-40s %s\n", "X", "Y", "TYPE", "DESCRIPTION", "FLAGS")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────────────────")
	for _, i := range icons {
		fmt.Fprintf(a.out, "%7.4f %7.4f %-5d %-40s %s\n", i.X, i.Y, i.IconType, i.Description, i.FlagNames)
	}
	fmt.Fprintln(a.out)
	return nil
}
