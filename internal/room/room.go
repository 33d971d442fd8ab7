// Package room runs one simulation per websocket client: the client streams
// pointer and viewport updates, the room streams back a frame per tick.
package room

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/vladimirvolkov/bouncer/internal/config"
	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/surface"
	"github.com/vladimirvolkov/bouncer/internal/ws"
)

// maxViewport bounds client-reported sizes.
const maxViewport = 8192

// Client is the transport side of a room; *ws.Conn satisfies it.
type Client interface {
	Send(msg ws.Message)
	ReadLoop(ctx context.Context) <-chan ws.Message
	Done() <-chan struct{}
	Close()
}

type Room struct {
	id     string
	name   string
	cfg    config.Config
	client Client
	board  *surface.Board
	loop   *game.Loop
	tick   atomic.Uint64
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func NewRoom(client Client, id, name string, cfg config.Config) (*Room, error) {
	r := &Room{
		id:     id,
		name:   name,
		cfg:    cfg,
		client: client,
		board:  surface.NewBoard(cfg.Viewport(), cfg.Dimensions()),
	}
	state, err := game.NewState(cfg.GameConfig(), r.board, time.Now().UnixMilli(), cfg.Rand())
	if err != nil {
		return nil, err
	}
	r.board.Layout()
	r.loop = game.NewLoop(state, r.board, cfg.Server.TickRate, r.frame)
	return r, nil
}

func (r *Room) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	msg, _ := ws.NewMessage(ws.MsgSessionStart, 0, ws.SessionStartPayload{
		SessionID: r.id,
		Name:      r.name,
		Config: ws.SessionConfigPayload{
			InitialBallSpeed:     r.cfg.Game.InitialBallSpeed,
			IntervalBetweenBalls: r.cfg.Game.IntervalBetweenBalls,
			MaxBalls:             r.cfg.Game.MaxBalls,
			TickRate:             r.cfg.Server.TickRate,
		},
	})
	r.client.Send(msg)

	go r.readLoop(ctx)

	go func() {
		defer close(r.done)
		if err := r.loop.Run(ctx); err != nil {
			r.err = err
			log.Printf("room %s: simulation stopped: %v", r.id, err)
			r.client.Close()
		}
	}()
}

// Done returns a channel that closes when the room's game loop exits.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Err is the error that stopped the loop, valid after Done.
func (r *Room) Err() error {
	return r.err
}

func (r *Room) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Room) readLoop(ctx context.Context) {
	msgs := r.client.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("room %s: client disconnected", r.id)
				r.cancel()
				return
			}
			r.handleMessage(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Room) handleMessage(msg ws.Message) {
	switch msg.Type {
	case ws.MsgPointer:
		var p ws.PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		r.loop.SetPointer(game.Point{X: p.X, Y: p.Y})

	case ws.MsgResize:
		var sz ws.ResizePayload
		if err := json.Unmarshal(msg.Payload, &sz); err != nil {
			return
		}
		r.board.Resize(game.Size{
			Width:  min(sz.Width, maxViewport),
			Height: min(sz.Height, maxViewport),
		})

	case ws.MsgPing:
		var ping ws.PingPayload
		if err := json.Unmarshal(msg.Payload, &ping); err != nil {
			return
		}
		pong, _ := ws.NewMessage(ws.MsgPong, r.tick.Load(), ws.PongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: uint64(time.Now().UnixMilli()),
		})
		r.client.Send(pong)
	}
}

// frame is the host pass after each tick: apply the targets, then ship them.
func (r *Room) frame(rep game.TickReport) {
	r.tick.Store(rep.Tick)
	r.board.Layout()

	if b := rep.Activated; b != nil {
		msg, err := ws.NewMessage(ws.MsgBallLaunched, rep.Tick, ws.BallLaunchedPayload{
			ID:    string(b.ID),
			Label: b.Label,
			Angle: b.Angle,
			DX:    b.DX,
			DY:    b.DY,
			Speed: b.Speed,
		})
		if err == nil {
			r.client.Send(msg)
		}
	}

	msg, err := ws.NewMessage(ws.MsgFrame, rep.Tick, FramePayload(r.board, rep))
	if err != nil {
		log.Printf("room %s: failed to encode frame: %v", r.id, err)
		return
	}
	r.client.Send(msg)
}

// FramePayload converts the board and tick report into the wire frame.
func FramePayload(board *surface.Board, rep game.TickReport) ws.FramePayload {
	size := board.CurrentSize()
	sprites := board.Sprites()
	out := ws.FramePayload{
		Width:   size.Width,
		Height:  size.Height,
		DeltaT:  rep.DeltaT,
		Sprites: make([]ws.SpritePayload, 0, len(sprites)),
	}
	for _, s := range sprites {
		out.Sprites = append(out.Sprites, ws.SpritePayload{
			ID:    string(s.ID),
			Kind:  string(s.Kind),
			Label: s.Label,
			X:     s.X,
			Y:     s.Y,
			W:     s.Width,
			H:     s.Height,
			Init:  s.Initializing,
		})
	}
	for _, b := range rep.Bounces {
		out.Bounces = append(out.Bounces, ws.BouncePayload{
			Ball:   string(b.Ball),
			Axis:   b.Axis.String(),
			Paddle: string(b.Paddle),
		})
	}
	return out
}
