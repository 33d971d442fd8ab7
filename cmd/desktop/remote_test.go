package main

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/ws"
)

// syncBuffer collects log output written from the read loop goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeServer sends script to every client, then records what the client
// sends until it disconnects.
func fakeServer(t *testing.T, script []ws.Message) (string, <-chan ws.Message) {
	t.Helper()
	received := make(chan ws.Message, 16)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range script {
			data, _ := ws.Encode(msg)
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msg, err := ws.Decode(data); err == nil {
				received <- msg
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

func mustMessage(t *testing.T, typ uint8, payload any) ws.Message {
	t.Helper()
	msg, err := ws.NewMessage(typ, 1, payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestRemoteReadLoopDeliversFramesAndLogs(t *testing.T) {
	var logs syncBuffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	url, _ := fakeServer(t, []ws.Message{
		mustMessage(t, ws.MsgSessionStart, ws.SessionStartPayload{SessionID: "session-1", Name: "Desk"}),
		mustMessage(t, ws.MsgBallLaunched, ws.BallLaunchedPayload{ID: "ball_0", Label: "B1", DX: 71, DY: -71}),
		mustMessage(t, ws.MsgFrame, ws.FramePayload{Width: 640, Height: 480}),
	})
	r, err := dial(url, "Desk")
	if err != nil {
		t.Fatal(err)
	}
	frames := make(chan ws.FramePayload, 1)
	r.onFrame = func(f ws.FramePayload) { frames <- f }
	done := make(chan struct{})
	go func() {
		r.readLoop()
		close(done)
	}()

	select {
	case f := <-frames:
		if f.Width != 640 || f.Height != 480 {
			t.Errorf("frame = %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
	}

	r.close()
	<-done
	out := logs.String()
	for _, want := range []string{"SESSION: session-1 [Desk]", "LAUNCH: ball_0 [B1] dx=71 dy=-71", "DISCONNECTED:"} {
		if !strings.Contains(out, want) {
			t.Errorf("log is missing %q:\n%s", want, out)
		}
	}
}

func TestRemoteUpdateSendsOnlyChanges(t *testing.T) {
	url, received := fakeServer(t, nil)
	r, err := dial(url, "Desk")
	if err != nil {
		t.Fatal(err)
	}
	defer r.close()

	size := game.Size{Width: 800, Height: 600}
	for i := 0; i < 3; i++ {
		if err := r.update(game.Point{X: 10, Y: 20}, size); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.update(game.Point{X: 11, Y: 20}, size); err != nil {
		t.Fatal(err)
	}

	want := []uint8{ws.MsgResize, ws.MsgPointer, ws.MsgPointer}
	for i, typ := range want {
		select {
		case msg := <-received:
			if msg.Type != typ {
				t.Fatalf("message %d type %#x, want %#x", i, msg.Type, typ)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("message %d never arrived", i)
		}
	}
	select {
	case msg := <-received:
		t.Errorf("unexpected extra message %#x", msg.Type)
	case <-time.After(100 * time.Millisecond):
	}
}
