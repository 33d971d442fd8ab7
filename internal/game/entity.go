package game

import (
	"errors"
	"fmt"
)

var ErrInvalidPositionMode = errors.New("invalid position mode")

// PositionMode anchors an entity against the viewport on one axis.
type PositionMode string

const (
	PosLeft   PositionMode = "left"
	PosRight  PositionMode = "right"
	PosTop    PositionMode = "top"
	PosBottom PositionMode = "bottom"
	PosCenter PositionMode = "center"
)

// ParsePositionMode accepts any of the five anchor names.
func ParsePositionMode(s string) (PositionMode, error) {
	switch m := PositionMode(s); m {
	case PosLeft, PosRight, PosTop, PosBottom, PosCenter:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPositionMode, s)
}

// Entity is a rectangle with a current box, read from the host at the start
// of a tick, and a pending position committed at the end of it.
type Entity struct {
	ID EntityID `json:"id"`
	Box
	NextX int `json:"nextX"`
	NextY int `json:"nextY"`
}

// ReadGeometry pulls the current box from the host.
func (e *Entity) ReadGeometry(g Geometry) {
	e.Box = g.BoundingBox(e.ID)
}

// CommitGeometry pushes the pending position to the host.
func (e *Entity) CommitGeometry(g Geometry) {
	g.SetTargetBox(e.ID, Point{X: e.NextX, Y: e.NextY})
}

func (e *Entity) SetXPosition(mode PositionMode, view Size) error {
	switch mode {
	case PosLeft:
		e.NextX = 0
	case PosRight:
		e.NextX = view.Width - e.Width
	case PosCenter:
		e.NextX = roundHalfUp(float64(view.Width-e.Width) / 2)
	default:
		return fmt.Errorf("%w: unknown x position %q", ErrInvalidPositionMode, mode)
	}
	return nil
}

func (e *Entity) SetYPosition(mode PositionMode, view Size) error {
	switch mode {
	case PosTop:
		e.NextY = 0
	case PosBottom:
		e.NextY = view.Height - e.Height
	case PosCenter:
		e.NextY = roundHalfUp(float64(view.Height-e.Height) / 2)
	default:
		return fmt.Errorf("%w: unknown y position %q", ErrInvalidPositionMode, mode)
	}
	return nil
}

// SetPosition applies both axes, stopping at the first invalid mode.
func (e *Entity) SetPosition(x, y PositionMode, view Size) error {
	if err := e.SetXPosition(x, view); err != nil {
		return err
	}
	return e.SetYPosition(y, view)
}
