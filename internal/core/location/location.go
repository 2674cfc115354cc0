// Package location resolves hex coordinates into human readable descriptions.
// Everything here is pure and independent of storage.
package location

import (
	"fmt"
	"math"
	"strings"
)

// Label is a named anchor on a hex.
type Label struct {
	Text string
	X    float64
	Y    float64
}

// Icon is a point of interest on a hex.
type Icon struct {
	X        float64
	Y        float64
	IconType int
	Flags    Flags
}

func distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// NearestLabel returns the label closest to (x, y). Equidistant labels are
// resolved by the lexicographically smallest text.
func NearestLabel(labels []Label, x, y float64) (Label, bool) {
	if len(labels) == 0 {
		return Label{}, false
	}

	best := labels[0]
	bestDist := distance(best.X, best.Y, x, y)
	for _, l := range labels[1:] {
		d := distance(l.X, l.Y, x, y)
		if d < bestDist || (d == bestDist && l.Text < best.Text) {
			best, bestDist = l, d
		}
	}
	return best, true
}

// NearestIcon returns the icon closest to (x, y). Equidistant icons are
// resolved by smaller x, then smaller y.
func NearestIcon(icons []Icon, x, y float64) (Icon, bool) {
	if len(icons) == 0 {
		return Icon{}, false
	}

	best := icons[0]
	bestDist := distance(best.X, best.Y, x, y)
	for _, i := range icons[1:] {
		d := distance(i.X, i.Y, x, y)
		if d < bestDist || (d == bestDist && (i.X < best.X || (i.X == best.X && i.Y < best.Y))) {
			best, bestDist = i, d
		}
	}
	return best, true
}

// IconRadius is how close an icon must be to a point to name it.
const IconRadius = 0.02

// IconAt returns the nearest icon within radius of (x, y).
func IconAt(icons []Icon, x, y, radius float64) (Icon, bool) {
	nearest, ok := NearestIcon(icons, x, y)
	if !ok || distance(nearest.X, nearest.Y, x, y) > radius {
		return Icon{}, false
	}
	return nearest, true
}

// Describe renders "the <thing> near <label>". An empty thing reads as
// "location"; an empty label leaves off the "near" clause.
func Describe(thing, label string) string {
	thing = strings.TrimSpace(thing)
	if thing == "" {
		thing = "location"
	}
	if label == "" {
		return "the " + thing
	}
	return fmt.Sprintf("the %s near %s", thing, label)
}

// DescribePoint describes (x, y) using the nearest label on the hex.
func DescribePoint(labels []Label, thing string, x, y float64) string {
	nearest, ok := NearestLabel(labels, x, y)
	if !ok {
		return Describe(thing, "")
	}
	return Describe(thing, nearest.Text)
}
