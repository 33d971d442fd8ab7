package ws

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// MessageLimiter throttles inbound messages per client IP.
type MessageLimiter interface {
	MessageAllowed(ip string) bool
}

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second

	// pointerRetry paces retries of a pointer sample held back by the limiter.
	pointerRetry = 50 * time.Millisecond
)

type Conn struct {
	ws      *websocket.Conn
	sendCh  chan []byte
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
	ID      string
	Name    string
	IP      string
	limiter MessageLimiter
}

func NewConn(ws *websocket.Conn, id string, ip string, limiter MessageLimiter) *Conn {
	return &Conn{
		ws:      ws,
		sendCh:  make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		ID:      id,
		IP:      ip,
		limiter: limiter,
	}
}

// Send queues msg without blocking. Frames are superseded every tick, so a
// full buffer drops the message instead of stalling the simulation.
func (c *Conn) Send(msg Message) {
	data, err := Encode(msg)
	if err != nil {
		log.Printf("conn %s: encode error: %v", c.ID, err)
		return
	}
	select {
	case c.sendCh <- data:
	default:
		if n := c.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("conn %s: send buffer full, dropped %d messages", c.ID, n)
		}
	}
}

// Dropped counts messages discarded by Send.
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Conn) ReadLoop(ctx context.Context) <-chan Message {
	raw := make(chan []byte, sendBuffer)
	go func() {
		defer close(raw)
		for {
			_, data, err := c.ws.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					log.Printf("conn %s: read error: %v", c.ID, err)
				}
				c.Close()
				return
			}
			select {
			case raw <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	ch := make(chan Message, sendBuffer)
	go c.dispatch(ctx, raw, ch)
	return ch
}

func (c *Conn) allowed() bool {
	return c.limiter == nil || c.limiter.MessageAllowed(c.IP)
}

// dispatch decodes and meters inbound frames. Messages over the limit are
// dropped, except the newest pointer sample: it is held and retried until the
// limiter admits it or an admitted pointer supersedes it.
func (c *Conn) dispatch(ctx context.Context, raw <-chan []byte, out chan<- Message) {
	defer close(out)

	var (
		held   *Message
		retry  *time.Timer
		retryC <-chan time.Time
	)
	defer func() {
		if retry != nil {
			retry.Stop()
		}
	}()
	arm := func() {
		if retry == nil {
			retry = time.NewTimer(pointerRetry)
		} else {
			retry.Reset(pointerRetry)
		}
		retryC = retry.C
	}
	deliver := func(msg Message) bool {
		select {
		case out <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case data, ok := <-raw:
			if !ok {
				return
			}
			msg, err := Decode(data)
			if err != nil {
				log.Printf("conn %s: decode error: %v", c.ID, err)
				continue
			}
			if !c.allowed() {
				if msg.Type == MsgPointer {
					held = &msg
					arm()
				}
				continue
			}
			if msg.Type == MsgPointer {
				held = nil
			}
			if !deliver(msg) {
				return
			}

		case <-retryC:
			retryC = nil
			if held == nil {
				continue
			}
			if !c.allowed() {
				arm()
				continue
			}
			msg := *held
			held = nil
			if !deliver(msg) {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) WriteLoop(ctx context.Context) {
	for {
		select {
		case data := <-c.sendCh:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Printf("conn %s: write error: %v", c.ID, err)
				c.Close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(websocket.StatusNormalClosure, "")
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
