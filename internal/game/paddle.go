package game

// Side is the screen edge a paddle is pinned to.
type Side uint8

const (
	SideNorth Side = iota
	SideSouth
	SideEast
	SideWest
)

// Sides lists the paddles in their fixed setup order.
var Sides = [4]Side{SideNorth, SideSouth, SideEast, SideWest}

func (s Side) String() string {
	switch s {
	case SideNorth:
		return "north"
	case SideSouth:
		return "south"
	case SideEast:
		return "east"
	case SideWest:
		return "west"
	}
	return "unknown"
}

// PaddleID is the surface id the host must provide for the paddle on s.
func PaddleID(s Side) EntityID {
	return EntityID("pad_" + s.String())
}

// Paddle is an entity pinned to one edge and driven along the other axis by
// the pointer.
type Paddle struct {
	Entity
	Side  Side `json:"side"`
	PageX int  `json:"pageX"`
	PageY int  `json:"pageY"`

	// tracking is false until the first pointer sample; the free axis then
	// keeps its setup position.
	tracking bool
}

func NewPaddle(s Side) *Paddle {
	return &Paddle{Entity: Entity{ID: PaddleID(s)}, Side: s}
}

// Horizontal reports whether the paddle slides along x (north and south).
func (p *Paddle) Horizontal() bool {
	return p.Side == SideNorth || p.Side == SideSouth
}

func (p *Paddle) Track(pt Point) {
	p.PageX = pt.X
	p.PageY = pt.Y
	p.tracking = true
}

// pin recomputes the pinned-axis target for the current viewport.
func (p *Paddle) pin(view Size) error {
	switch p.Side {
	case SideNorth:
		return p.SetYPosition(PosTop, view)
	case SideSouth:
		return p.SetYPosition(PosBottom, view)
	case SideEast:
		return p.SetXPosition(PosRight, view)
	default:
		return p.SetXPosition(PosLeft, view)
	}
}

// place sets the setup position: centred on the free axis, pinned on the other.
func (p *Paddle) place(view Size) error {
	if p.Horizontal() {
		if err := p.SetXPosition(PosCenter, view); err != nil {
			return err
		}
	} else if err := p.SetYPosition(PosCenter, view); err != nil {
		return err
	}
	return p.pin(view)
}

// Reposition moves the free axis straight to the latest pointer sample and
// re-pins the fixed axis, so paddles follow viewport resizes.
func (p *Paddle) Reposition(view Size) error {
	if p.Horizontal() {
		if p.tracking {
			p.NextX = p.PageX
		} else {
			p.NextX = p.X
		}
	} else {
		if p.tracking {
			p.NextY = p.PageY
		} else {
			p.NextY = p.Y
		}
	}
	return p.pin(view)
}
