package primary

import (
	"context"
	"time"
)

// MapService defines the primary port for reading the current war's map state.
type MapService interface {
	// CurrentWar returns the latest war on record, or nil when none exists.
	CurrentWar(ctx context.Context) (*War, error)

	// LatestMaps returns the hexes of the latest war.
	LatestMaps(ctx context.Context) ([]*Map, error)

	// LatestLabels returns a hex's labels in the latest war.
	LatestLabels(ctx context.Context, mapName string) ([]*Label, error)

	// LatestIcons returns a hex's icons in the latest war with descriptions.
	LatestIcons(ctx context.Context, mapName string) ([]*Icon, error)

	// DescribeLocation renders a point on a hex as "the <thing> near <label>".
	DescribeLocation(ctx context.Context, mapName string, x, y float64) (string, error)

	// Status summarizes what is recorded for the latest war.
	Status(ctx context.Context) (*Status, error)
}

// War is a war on record.
type War struct {
	Number     int
	ObservedAt time.Time
}

// Map is a hex in a war.
type Map struct {
	Name      string
	WarNumber int
}

// Label is a named anchor on a hex.
type Label struct {
	Text string
	X    float64
	Y    float64
	Kind string
}

// Icon is a point of interest on a hex.
type Icon struct {
	MapName     string
	X           float64
	Y           float64
	IconType    int
	TypeName    string // empty when the codebook doesn't know the type
	Flags       int
	FlagNames   string
	Description string
}

// Status summarizes the latest war. War is nil before the first sync.
type Status struct {
	War     *War
	Maps    int
	Labels  int
	Icons   int
	Tickets int
}
