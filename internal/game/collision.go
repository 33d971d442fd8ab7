package game

import (
	"errors"
	"fmt"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is the side of a stationary entity that a moving entity
// approaches from.
type Direction byte

const (
	FromNorth Direction = 'N'
	FromSouth Direction = 'S'
	FromEast  Direction = 'E'
	FromWest  Direction = 'W'
)

func (d Direction) String() string { return string(d) }

func ParseDirection(s string) (Direction, error) {
	if len(s) == 1 {
		switch d := Direction(s[0]); d {
		case FromNorth, FromSouth, FromEast, FromWest:
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Between reports lo <= v <= hi.
func Between(v, lo, hi float64) bool {
	return lo <= v && v <= hi
}

// Collides reports whether the leading edge of moving currently lies on the
// face of stationary that it approaches from dir. Only the centre of moving
// is tested on the perpendicular axis, so a ball whose centre has already
// passed a paddle's corner slips by.
func Collides(dir Direction, moving, stationary Box) (bool, error) {
	var lead, cross, lo, hi float64
	switch dir {
	case FromWest:
		lead, cross = float64(moving.E()), moving.CenterY()
		lo, hi = float64(stationary.N()), float64(stationary.S())
	case FromEast:
		lead, cross = float64(moving.W()), moving.CenterY()
		lo, hi = float64(stationary.N()), float64(stationary.S())
	case FromNorth:
		lead, cross = float64(moving.S()), moving.CenterX()
		lo, hi = float64(stationary.W()), float64(stationary.E())
	case FromSouth:
		lead, cross = float64(moving.N()), moving.CenterX()
		lo, hi = float64(stationary.W()), float64(stationary.E())
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	// The leading edge is tested against the span along the approach axis.
	var front, back float64
	if dir == FromWest || dir == FromEast {
		front, back = float64(stationary.W()), float64(stationary.E())
	} else {
		front, back = float64(stationary.N()), float64(stationary.S())
	}
	return Between(lead, front, back) && Between(cross, lo, hi), nil
}
