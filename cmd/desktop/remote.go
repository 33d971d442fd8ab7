package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/ws"
)

// remote mirrors a server session. Writes happen only from Update; the read
// loop only decodes frames.
type remote struct {
	conn    *websocket.Conn
	onFrame func(ws.FramePayload)

	lastPointer game.Point
	lastSize    game.Size
	sentPointer bool
}

func dial(rawURL, name string) (*remote, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return &remote{conn: conn}, nil
}

func (r *remote) send(typ uint8, payload any) error {
	msg, err := ws.NewMessage(typ, 0, payload)
	if err != nil {
		return err
	}
	data, err := ws.Encode(msg)
	if err != nil {
		return err
	}
	return r.conn.WriteMessage(websocket.TextMessage, data)
}

// update forwards viewport and pointer changes; unchanged values are not
// resent.
func (r *remote) update(pointer game.Point, size game.Size) error {
	if size != r.lastSize && size.Width > 0 && size.Height > 0 {
		if err := r.send(ws.MsgResize, ws.ResizePayload{Width: size.Width, Height: size.Height}); err != nil {
			return fmt.Errorf("send resize: %w", err)
		}
		r.lastSize = size
	}
	if !r.sentPointer || pointer != r.lastPointer {
		if err := r.send(ws.MsgPointer, ws.PointerPayload{X: pointer.X, Y: pointer.Y}); err != nil {
			return fmt.Errorf("send pointer: %w", err)
		}
		r.lastPointer = pointer
		r.sentPointer = true
	}
	return nil
}

func (r *remote) readLoop() {
	for {
		msgType, data, err := r.conn.ReadMessage()
		if err != nil {
			log.Printf("DISCONNECTED: %v", err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		msg, err := ws.Decode(data)
		if err != nil {
			log.Printf("bad message: %v", err)
			continue
		}
		switch msg.Type {
		case ws.MsgFrame:
			var f ws.FramePayload
			if err := json.Unmarshal(msg.Payload, &f); err != nil {
				log.Printf("bad frame: %v", err)
				continue
			}
			if r.onFrame != nil {
				r.onFrame(f)
			}
		case ws.MsgSessionStart:
			var s ws.SessionStartPayload
			if err := json.Unmarshal(msg.Payload, &s); err == nil {
				log.Printf("SESSION: %s [%s]", s.SessionID, s.Name)
			}
		case ws.MsgBallLaunched:
			var b ws.BallLaunchedPayload
			if err := json.Unmarshal(msg.Payload, &b); err == nil {
				log.Printf("LAUNCH: %s [%s] dx=%d dy=%d", b.ID, b.Label, b.DX, b.DY)
			}
		}
	}
}

func (r *remote) close() {
	r.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	r.conn.Close()
}
