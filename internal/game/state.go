package game

import (
	"math/rand"
	"time"
)

const (
	// Default tick rate for hosts that drive the loop themselves.
	TickRate = 60

	// firstFrameGap seeds PreviousFrame so the first tick has a non-zero deltaT.
	firstFrameGap = 15
)

// Config is the read-only tuning injected at setup.
type Config struct {
	InitialBallSpeed     float64 `json:"initialBallSpeed"`     // pixels per millisecond
	IntervalBetweenBalls int64   `json:"intervalBetweenBalls"` // milliseconds
	MaxBalls             int     `json:"maxBalls"`             // 0 = unbounded
}

// Timestamps are epoch milliseconds. CurrentFrame never goes below
// PreviousFrame.
type Timestamps struct {
	GameStart        int64 `json:"gameStart"`
	PreviousFrame    int64 `json:"previousFrame"`
	CurrentFrame     int64 `json:"currentFrame"`
	LatestBallLaunch int64 `json:"latestBallLaunch"`
}

// DeltaT is the time covered by the current tick.
func (t Timestamps) DeltaT() int64 {
	return t.CurrentFrame - t.PreviousFrame
}

// Pending is a prepared ball surface waiting for activation.
type Pending struct {
	ID    EntityID `json:"id"`
	Label string   `json:"label"`
}

// State is everything the simulation owns. One goroutine at a time.
type State struct {
	Config     Config
	Paddles    [4]*Paddle
	Balls      []*Ball
	Pending    []Pending
	Viewport   Size
	Timestamps Timestamps
	Tick       uint64

	counter int
	rng     *rand.Rand
}

// NewState places the four paddles the host already provides and commits
// their setup positions. now is epoch milliseconds.
func NewState(cfg Config, host Host, now int64, rng *rand.Rand) (*State, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &State{
		Config: cfg,
		Timestamps: Timestamps{
			GameStart:     now,
			PreviousFrame: now - firstFrameGap,
			CurrentFrame:  now,
		},
		Viewport: host.CurrentSize(),
		rng:      rng,
	}
	for i, side := range Sides {
		pad := NewPaddle(side)
		pad.ReadGeometry(host)
		if err := pad.place(s.Viewport); err != nil {
			return nil, err
		}
		pad.CommitGeometry(host)
		s.Paddles[i] = pad
	}
	return s, nil
}

// Paddle returns the paddle pinned to side.
func (s *State) Paddle(side Side) *Paddle {
	for _, p := range s.Paddles {
		if p.Side == side {
			return p
		}
	}
	return nil
}

// ApplyPointer stores the latest pointer sample on every paddle.
func (s *State) ApplyPointer(pt Point) {
	for _, p := range s.Paddles {
		p.Track(pt)
	}
}

// BeginFrame shifts the frame clock. A clock that runs backwards is held at
// the previous frame.
func (s *State) BeginFrame(now int64) {
	if now < s.Timestamps.CurrentFrame {
		now = s.Timestamps.CurrentFrame
	}
	s.Timestamps.PreviousFrame = s.Timestamps.CurrentFrame
	s.Timestamps.CurrentFrame = now
}

// BallCount counts launched and pending balls.
func (s *State) BallCount() int {
	return len(s.Balls) + len(s.Pending)
}

func (s *State) spawnDue() bool {
	if s.Config.MaxBalls > 0 && s.BallCount() >= s.Config.MaxBalls {
		return false
	}
	return s.Timestamps.CurrentFrame-s.Timestamps.LatestBallLaunch >= s.Config.IntervalBetweenBalls
}

// prepare asks the host for a new ball surface and queues it.
func (s *State) prepare(host Host) EntityID {
	n := s.counter
	s.counter++
	label := ballLabel(n)
	id := host.CreateBallSurface(ballID(n), label)
	s.Pending = append(s.Pending, Pending{ID: id, Label: label})
	s.Timestamps.LatestBallLaunch = s.Timestamps.CurrentFrame
	return id
}

// flushPending activates the most recently prepared ball, if any.
func (s *State) flushPending(host Host) (*Ball, error) {
	if len(s.Pending) == 0 {
		return nil, nil
	}
	last := len(s.Pending) - 1
	p := s.Pending[last]
	s.Pending = s.Pending[:last]

	b := &Ball{Entity: Entity{ID: p.ID}, Label: p.Label}
	b.ReadGeometry(host)
	if err := b.launch(s.Viewport, s.Config.InitialBallSpeed, s.rng); err != nil {
		return nil, err
	}
	s.Balls = append(s.Balls, b)
	return b, nil
}
