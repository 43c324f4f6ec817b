// Package direction converts between compass directions, text tokens and
// directions relative to the tank's heading.
package direction

import "strings"

// Direction is an absolute compass direction on the line grid.
type Direction uint8

// Compass directions, clockwise from north. Unknown is a sentinel and never
// takes part in angle arithmetic.
const (
	Unknown Direction = iota
	North
	East
	South
	West
)

// Relative is a direction expressed as quarter turns clockwise from the
// tank's heading.
type Relative uint8

const (
	RelativeUnknown Relative = iota
	Ahead
	Right
	Behind
	Left
)

// All returns the four named directions in clockwise order from north.
func All() []Direction {
	return []Direction{North, East, South, West}
}

// AllRelative returns the four named relative directions in clockwise order.
func AllRelative() []Relative {
	return []Relative{Ahead, Right, Behind, Left}
}

var tokens = map[string]Direction{
	"NORTH":   North,
	"N":       North,
	"EAST":    East,
	"E":       East,
	"SOUTH":   South,
	"S":       South,
	"WEST":    West,
	"W":       West,
	"UNKNOWN": Unknown,
	"U":       Unknown,
}

// Parse maps a token such as "n", "East" or "SOUTH" to a Direction.
// The second result is false when the token is not recognized.
func Parse(token string) (Direction, bool) {
	d, ok := tokens[strings.ToUpper(token)]
	return d, ok
}

// ParseOrUnknown is Parse with unrecognized tokens mapped to Unknown.
func ParseOrUnknown(token string) Direction {
	d, _ := Parse(token)
	return d
}

// quarter returns the number of quarter turns clockwise from north.
func (d Direction) quarter() (int, bool) {
	switch d {
	case North:
		return 0, true
	case East:
		return 1, true
	case South:
		return 2, true
	case West:
		return 3, true
	default:
		return 0, false
	}
}

// Angle returns the compass angle in degrees (north = 0, clockwise).
// The second result is false for Unknown.
func (d Direction) Angle() (int, bool) {
	q, ok := d.quarter()
	return q * 90, ok
}

// Known reports whether d is a named direction.
func (d Direction) Known() bool {
	_, ok := d.quarter()
	return ok
}

func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	case West:
		return "WEST"
	default:
		return "UNKNOWN"
	}
}

// Abbrev returns the single-letter token for d.
func (d Direction) Abbrev() string {
	return d.String()[:1]
}

// Ordinal returns the number of quarter turns clockwise from Ahead.
// The second result is false for RelativeUnknown.
func (r Relative) Ordinal() (int, bool) {
	switch r {
	case Ahead:
		return 0, true
	case Right:
		return 1, true
	case Behind:
		return 2, true
	case Left:
		return 3, true
	default:
		return 0, false
	}
}

// Known reports whether r is a named relative direction.
func (r Relative) Known() bool {
	_, ok := r.Ordinal()
	return ok
}

func (r Relative) String() string {
	switch r {
	case Ahead:
		return "AHEAD"
	case Right:
		return "RIGHT"
	case Behind:
		return "BEHIND"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

var (
	byQuarter = [4]Direction{North, East, South, West}
	byOrdinal  = [4]Relative{Ahead, Right, Behind, Left}
)

// mod4 normalizes n into [0,4) for negative n as well.
func mod4(n int) int {
	return ((n % 4) + 4) % 4
}

// RelativeTo returns target as seen from a tank heading facing.
// It returns RelativeUnknown if either argument is Unknown.
func RelativeTo(facing, target Direction) Relative {
	f, ok := facing.quarter()
	if !ok {
		return RelativeUnknown
	}
	t, ok := target.quarter()
	if !ok {
		return RelativeUnknown
	}
	return byOrdinal[mod4(t-f)]
}

// Absolute returns the compass direction reached by turning rel from facing.
// It returns Unknown if either argument is unknown.
func Absolute(facing Direction, rel Relative) Direction {
	f, ok := facing.quarter()
	if !ok {
		return Unknown
	}
	r, ok := rel.Ordinal()
	if !ok {
		return Unknown
	}
	return byQuarter[mod4(f+r)]
}
