package location

import "strings"

// Flags is the War API's 6-bit icon flag mask.
type Flags int

const (
	FlagVictoryBase Flags = 0x01
	FlagHomeBase    Flags = 0x02
	FlagBuildSite   Flags = 0x04
	FlagScorched    Flags = 0x10
	FlagTownClaimed Flags = 0x20

	// MaxFlags is the largest valid mask.
	MaxFlags Flags = 0x3f
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagVictoryBase, "victory base"},
	{FlagHomeBase, "home base"},
	{FlagBuildSite, "build site"},
	{FlagScorched, "scorched"},
	{FlagTownClaimed, "town claimed"},
}

// Valid reports whether f fits in six bits.
func (f Flags) Valid() bool {
	return f >= 0 && f <= MaxFlags
}

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// String lists the named flags that are set, or "none".
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
