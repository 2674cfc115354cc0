package secondary

import (
	"context"
	"time"
)

// LabelFilter selects which label kinds FetchLabels returns.
type LabelFilter string

const (
	LabelsMajor LabelFilter = "Major"
	LabelsMinor LabelFilter = "Minor"
	LabelsBoth  LabelFilter = "Both"
)

// Valid reports whether f is a recognized filter.
func (f LabelFilter) Valid() bool {
	switch f {
	case LabelsMajor, LabelsMinor, LabelsBoth:
		return true
	}
	return false
}

// Match reports whether a label of the given kind passes the filter.
func (f LabelFilter) Match(kind string) bool {
	return f == LabelsBoth || string(f) == kind
}

// LabelData is a label as reported by the map data source.
type LabelData struct {
	Text string
	X    float64
	Y    float64
	Kind string
}

// IconData is an icon as reported by the map data source.
type IconData struct {
	X        float64
	Y        float64
	IconType int
	Flags    int
}

// MapDataSource defines the secondary port for the remote war state API.
// It is read-only.
type MapDataSource interface {
	// FetchCurrentWar returns the current war number and when it was fetched.
	FetchCurrentWar(ctx context.Context) (int, time.Time, error)

	// FetchHexNames returns the names of every active hex.
	FetchHexNames(ctx context.Context) ([]string, error)

	// FetchLabels returns a hex's labels passing filter.
	// InvalidArgument for an unrecognized filter.
	FetchLabels(ctx context.Context, hex string, filter LabelFilter) ([]LabelData, error)

	// FetchIcons returns a hex's icons.
	FetchIcons(ctx context.Context, hex string) ([]IconData, error)
}
