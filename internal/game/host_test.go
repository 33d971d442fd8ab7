package game

import "math/rand"

// fakeHost records every call so tests can check read/write ordering.
type fakeHost struct {
	size    Size
	boxes   map[EntityID]Box
	targets map[EntityID]Point
	created []EntityID
	cleared []EntityID
	calls   []string
}

func newFakeHost(size Size) *fakeHost {
	h := &fakeHost{
		size:    size,
		boxes:   make(map[EntityID]Box),
		targets: make(map[EntityID]Point),
	}
	h.boxes[PaddleID(SideNorth)] = Box{Width: 100, Height: 10}
	h.boxes[PaddleID(SideSouth)] = Box{Width: 100, Height: 10}
	h.boxes[PaddleID(SideEast)] = Box{Width: 10, Height: 100}
	h.boxes[PaddleID(SideWest)] = Box{Width: 10, Height: 100}
	return h
}

func (h *fakeHost) BoundingBox(id EntityID) Box {
	h.calls = append(h.calls, "read")
	return h.boxes[id]
}

func (h *fakeHost) SetTargetBox(id EntityID, p Point) {
	h.calls = append(h.calls, "write")
	h.targets[id] = p
}

func (h *fakeHost) CurrentSize() Size {
	h.calls = append(h.calls, "read")
	return h.size
}

func (h *fakeHost) CreateBallSurface(id EntityID, label string) EntityID {
	h.calls = append(h.calls, "write")
	h.boxes[id] = Box{Width: 10, Height: 10}
	h.created = append(h.created, id)
	return id
}

func (h *fakeHost) ClearInitializing(id EntityID) {
	h.calls = append(h.calls, "write")
	h.cleared = append(h.cleared, id)
}

// layout applies the staged targets, as a browser would between frames.
func (h *fakeHost) layout() {
	for id, p := range h.targets {
		b := h.boxes[id]
		b.X, b.Y = p.X, p.Y
		h.boxes[id] = b
	}
	h.targets = make(map[EntityID]Point)
}

func newTestState(h *fakeHost, cfg Config, now int64) *State {
	s, err := NewState(cfg, h, now, rand.New(rand.NewSource(1)))
	if err != nil {
		panic(err)
	}
	h.layout()
	return s
}

// farPads returns paddles parked well away from the middle of an 800x600
// field.
func farPads() [4]*Paddle {
	var pads [4]*Paddle
	for i, side := range Sides {
		pads[i] = NewPaddle(side)
	}
	pads[0].Box = Box{X: -500, Y: 0, Width: 100, Height: 10}
	pads[1].Box = Box{X: -500, Y: 590, Width: 100, Height: 10}
	pads[2].Box = Box{X: 790, Y: -500, Width: 10, Height: 100}
	pads[3].Box = Box{X: 0, Y: -500, Width: 10, Height: 100}
	return pads
}
