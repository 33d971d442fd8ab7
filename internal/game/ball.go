package game

import (
	"fmt"
	"math"
	"math/rand"
)

// launchScale is the magnitude of the launch vector before rounding. The
// vector is not normalised afterwards, so diagonal launches run faster.
const launchScale = 100

type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Bounce records one sign flip. Paddle is empty for a viewport edge.
type Bounce struct {
	Ball   EntityID `json:"ball"`
	Axis   Axis     `json:"axis"`
	Paddle EntityID `json:"paddle,omitempty"`
}

// Ball is an entity with a fixed speed and a direction that flips on contact.
type Ball struct {
	Entity
	Label       string  `json:"label"`
	Angle       float64 `json:"angle"`
	DX          int     `json:"dx"`
	DY          int     `json:"dy"`
	Speed       float64 `json:"speed"`
	Initialized bool    `json:"initialized"`
}

// ballID and ballLabel follow the surface naming of the first ball being
// ball_0 / B1.
func ballID(n int) EntityID { return EntityID(fmt.Sprintf("ball_%d", n)) }

func ballLabel(n int) string { return fmt.Sprintf("B%d", n+1) }

// launch centres the ball against view and draws a random heading. The
// current box is overwritten with the centred position so the rest of the
// tick behaves as if the ball were already there.
func (b *Ball) launch(view Size, speed float64, rng *rand.Rand) error {
	if err := b.SetPosition(PosCenter, PosCenter, view); err != nil {
		return err
	}
	b.X, b.Y = b.NextX, b.NextY
	b.Angle = 2 * rng.Float64() * math.Pi
	b.DX = roundHalfUp(math.Cos(b.Angle) * launchScale)
	b.DY = roundHalfUp(math.Sin(b.Angle) * launchScale)
	b.Speed = speed
	return nil
}

// collidingPad returns the first paddle other than exclude that the ball
// touches when approaching from dir.
func (b *Ball) collidingPad(dir Direction, exclude Side, pads [4]*Paddle) (*Paddle, error) {
	for _, pad := range pads {
		if pad == nil || pad.Side == exclude {
			continue
		}
		hit, err := Collides(dir, b.Box, pad.Box)
		if err != nil {
			return nil, err
		}
		if hit {
			return pad, nil
		}
	}
	return nil, nil
}

// CollidingWithAnyPad skips exclude, the paddle behind a ball that is known
// to be inside the field.
func (b *Ball) CollidingWithAnyPad(dir Direction, exclude Side, pads [4]*Paddle) (bool, error) {
	pad, err := b.collidingPad(dir, exclude, pads)
	return pad != nil, err
}

// axisContact evaluates one axis. A viewport edge wins over paddles.
func (b *Ball) axisContact(atEdge bool, dir Direction, exclude Side, pads [4]*Paddle) (bool, EntityID, error) {
	if atEdge {
		return true, "", nil
	}
	pad, err := b.collidingPad(dir, exclude, pads)
	if err != nil || pad == nil {
		return false, "", err
	}
	return true, pad.ID, nil
}

// Bounce evaluates both axes against the pre-flip direction, then flips
// whichever axes made contact.
func (b *Ball) Bounce(view Size, pads [4]*Paddle) ([]Bounce, error) {
	var (
		hitX, hitY bool
		padX, padY EntityID
		err        error
	)
	switch {
	case b.DX < 0:
		hitX, padX, err = b.axisContact(b.W() <= 0, FromEast, SideEast, pads)
	case b.DX > 0:
		hitX, padX, err = b.axisContact(b.E() >= view.Width, FromWest, SideWest, pads)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case b.DY < 0:
		hitY, padY, err = b.axisContact(b.N() <= 0, FromSouth, SideSouth, pads)
	case b.DY > 0:
		hitY, padY, err = b.axisContact(b.S() >= view.Height, FromNorth, SideNorth, pads)
	}
	if err != nil {
		return nil, err
	}

	var out []Bounce
	if hitX {
		b.DX = -b.DX
		out = append(out, Bounce{Ball: b.ID, Axis: AxisX, Paddle: padX})
	}
	if hitY {
		b.DY = -b.DY
		out = append(out, Bounce{Ball: b.ID, Axis: AxisY, Paddle: padY})
	}
	return out, nil
}

// Advance sets the pending position for deltaT milliseconds of travel.
func (b *Ball) Advance(deltaT int64) {
	dt := float64(deltaT)
	b.NextX = b.X + roundHalfUp(float64(b.DX)*b.Speed*dt)
	b.NextY = b.Y + roundHalfUp(float64(b.DY)*b.Speed*dt)
}

// CommitGeometry clears the spawn styling on the first commit.
func (b *Ball) CommitGeometry(host Host) {
	if !b.Initialized {
		host.ClearInitializing(b.ID)
		b.Initialized = true
	}
	b.Entity.CommitGeometry(host)
}
