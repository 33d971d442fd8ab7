package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// FrameFunc runs after every tick on the loop goroutine. Hosts use it as
// their layout and render pass.
type FrameFunc func(rep TickReport)

// Loop is the frame scheduler: one Step per refresh, with pointer input
// staged from other goroutines and applied at the tick boundary.
type Loop struct {
	state    *State
	host     Host
	tickRate int
	onFrame  FrameFunc

	// LogBounces logs every bounce; launches are always logged.
	LogBounces bool

	inputMu sync.Mutex
	pointer Point
	fresh   bool

	started bool
}

func NewLoop(state *State, host Host, tickRate int, onFrame FrameFunc) *Loop {
	if tickRate <= 0 {
		tickRate = TickRate
	}
	return &Loop{state: state, host: host, tickRate: tickRate, onFrame: onFrame}
}

// SetPointer records the latest pointer sample. Safe from any goroutine.
func (l *Loop) SetPointer(p Point) {
	l.inputMu.Lock()
	l.pointer = p
	l.fresh = true
	l.inputMu.Unlock()
}

// State exposes the simulation state. Only touch it from the loop goroutine
// or inside the FrameFunc.
func (l *Loop) State() *State {
	return l.state
}

// Frame runs one tick at now. The very first frame keeps the clock NewState
// seeded.
func (l *Loop) Frame(now time.Time) (TickReport, error) {
	l.inputMu.Lock()
	pointer, fresh := l.pointer, l.fresh
	l.fresh = false
	l.inputMu.Unlock()
	if fresh {
		l.state.ApplyPointer(pointer)
	}

	if l.started {
		l.state.BeginFrame(now.UnixMilli())
	}
	l.started = true

	rep, err := Step(l.state, l.host)
	if err != nil {
		log.Printf("TICK ABORTED: tick=%d: %v", rep.Tick, err)
		return rep, err
	}

	if b := rep.Activated; b != nil {
		log.Printf("LAUNCH: %s [%s] angle=%.3f dx=%d dy=%d speed=%.4f (balls: %d)",
			b.ID, b.Label, b.Angle, b.DX, b.DY, b.Speed, rep.Balls)
	}
	if l.LogBounces {
		for _, bn := range rep.Bounces {
			if bn.Paddle != "" {
				log.Printf("BOUNCE: %s axis=%s off %s", bn.Ball, bn.Axis, bn.Paddle)
			} else {
				log.Printf("BOUNCE: %s axis=%s off edge", bn.Ball, bn.Axis)
			}
		}
	}

	if l.onFrame != nil {
		l.onFrame(rep)
	}
	return rep, nil
}

// Run ticks until ctx is done. It returns nil on cancellation and the error
// of the first aborted tick otherwise.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.tickRate))
	defer ticker.Stop()

	if _, err := l.Frame(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case now := <-ticker.C:
			if _, err := l.Frame(now); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
