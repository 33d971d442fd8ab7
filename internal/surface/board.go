// Package surface is an in-memory rendering surface for the simulation. It
// plays the part of the page layout: it owns the authoritative boxes, takes
// the targets written at the end of a tick and applies them on Layout.
package surface

import (
	"sync"

	"github.com/vladimirvolkov/bouncer/internal/game"
)

type Kind string

const (
	KindPaddle Kind = "paddle"
	KindBall   Kind = "ball"
)

// Sprite is a render snapshot of one surface.
type Sprite struct {
	ID    game.EntityID `json:"id"`
	Kind  Kind          `json:"kind"`
	Label string        `json:"label,omitempty"`
	game.Box
	Initializing bool `json:"init,omitempty"`
}

// Dimensions sizes the surfaces the board creates.
type Dimensions struct {
	BallSize        int
	PaddleLength    int
	PaddleThickness int
}

// Board implements game.Host.
type Board struct {
	mu      sync.Mutex
	size    game.Size
	dims    Dimensions
	sprites map[game.EntityID]*Sprite
	order   []game.EntityID
	targets map[game.EntityID]game.Point
}

// NewBoard creates the four paddle surfaces at the origin, the way a page
// ships them before any script has positioned them.
func NewBoard(size game.Size, dims Dimensions) *Board {
	b := &Board{
		size:    size,
		dims:    dims,
		sprites: make(map[game.EntityID]*Sprite),
		targets: make(map[game.EntityID]game.Point),
	}
	for _, side := range game.Sides {
		box := game.Box{Width: dims.PaddleLength, Height: dims.PaddleThickness}
		if side == game.SideEast || side == game.SideWest {
			box = game.Box{Width: dims.PaddleThickness, Height: dims.PaddleLength}
		}
		b.add(&Sprite{ID: game.PaddleID(side), Kind: KindPaddle, Box: box})
	}
	return b
}

func (b *Board) add(s *Sprite) {
	if _, ok := b.sprites[s.ID]; !ok {
		b.order = append(b.order, s.ID)
	}
	b.sprites[s.ID] = s
}

// BoundingBox returns the applied box; unknown ids yield an empty box.
func (b *Board) BoundingBox(id game.EntityID) game.Box {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sprites[id]; ok {
		return s.Box
	}
	return game.Box{}
}

// SetTargetBox stages a position until the next Layout.
func (b *Board) SetTargetBox(id game.EntityID, p game.Point) {
	b.mu.Lock()
	b.targets[id] = p
	b.mu.Unlock()
}

// Layout applies every staged target and reports how many moved.
func (b *Board) Layout() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, p := range b.targets {
		if s, ok := b.sprites[id]; ok {
			s.X, s.Y = p.X, p.Y
			n++
		}
		delete(b.targets, id)
	}
	return n
}

func (b *Board) CurrentSize() game.Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Resize changes the viewport. Negative sizes are clamped to zero.
func (b *Board) Resize(size game.Size) {
	size.Width = max(size.Width, 0)
	size.Height = max(size.Height, 0)
	b.mu.Lock()
	b.size = size
	b.mu.Unlock()
}

// CreateBallSurface adds a ball at the origin in its initializing look.
func (b *Board) CreateBallSurface(id game.EntityID, label string) game.EntityID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.add(&Sprite{
		ID:           id,
		Kind:         KindBall,
		Label:        label,
		Box:          game.Box{Width: b.dims.BallSize, Height: b.dims.BallSize},
		Initializing: true,
	})
	return id
}

func (b *Board) ClearInitializing(id game.EntityID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sprites[id]; ok {
		s.Initializing = false
	}
}

// Sprites returns a copy of every surface in creation order.
func (b *Board) Sprites() []Sprite {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Sprite, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.sprites[id])
	}
	return out
}

// Len counts surfaces, paddles included.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}
