package game

import "math"

// EntityID names a surface owned by the host (a DOM id, a board key).
type EntityID string

// Box is an axis-aligned rectangle in integer screen pixels.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// W returns the west (left) edge.
func (b Box) W() int { return b.X }

// E returns the east (right) edge.
func (b Box) E() int { return b.X + b.Width }

// N returns the north (top) edge.
func (b Box) N() int { return b.Y }

// S returns the south (bottom) edge.
func (b Box) S() int { return b.Y + b.Height }

func (b Box) CenterX() float64 { return float64(b.X) + float64(b.Width)/2 }

func (b Box) CenterY() float64 { return float64(b.Y) + float64(b.Height)/2 }

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry is the authoritative source of on-screen boxes and the sink for
// the boxes to render next frame. Targets are applied by the host after the
// tick, never during it.
type Geometry interface {
	BoundingBox(id EntityID) Box
	SetTargetBox(id EntityID, p Point)
}

// Viewport reports the current drawable area.
type Viewport interface {
	CurrentSize() Size
}

// SurfaceFactory creates ball surfaces. There is no destroy hook: balls live
// for the whole session.
type SurfaceFactory interface {
	CreateBallSurface(id EntityID, label string) EntityID
	ClearInitializing(id EntityID)
}

// Host is everything the simulation needs from the rendering side.
type Host interface {
	Geometry
	Viewport
	SurfaceFactory
}

// roundHalfUp rounds like the browser's Math.round: halves go towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
