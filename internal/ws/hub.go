package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"unicode/utf8"

	"github.com/coder/websocket"

	"github.com/vladimirvolkov/bouncer/internal/middleware"
)

const (
	defaultMaxRooms = 100
	maxNameRunes    = 12
	readLimit       = 1024
)

// sanitizeName keeps letters, digits, underscore, dash, space and cyrillic,
// and falls back to "Player" when fewer than two runes survive.
func sanitizeName(raw string) string {
	if !utf8.ValidString(raw) {
		return "Player"
	}
	cleaned := []rune{}
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' || r == ' ' ||
			(r >= 0x0400 && r <= 0x04FF) {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) < 2 {
		return "Player"
	}
	if len(cleaned) > maxNameRunes {
		cleaned = cleaned[:maxNameRunes]
	}
	return string(cleaned)
}

// RoomCreator starts a simulation session for a freshly accepted client.
// Every client gets its own field; there is no matchmaking.
type RoomCreator interface {
	CreateRoom(c *Conn)
}

// HubStats holds live server metrics.
type HubStats struct {
	ActiveRooms      int64  `json:"activeRooms"`
	TotalConnections uint64 `json:"totalConnections"`
}

type Hub struct {
	creator  RoomCreator
	nextID   atomic.Uint64
	maxRooms int64

	activeRooms      atomic.Int64
	totalConnections atomic.Uint64

	limiter        *middleware.IPRateLimiter
	originPatterns []string
}

func NewHub(creator RoomCreator, limiter *middleware.IPRateLimiter, originPatterns []string, maxRooms int) *Hub {
	if maxRooms <= 0 {
		maxRooms = defaultMaxRooms
	}
	return &Hub{
		creator:        creator,
		limiter:        limiter,
		originPatterns: originPatterns,
		maxRooms:       int64(maxRooms),
	}
}

// Stats returns a snapshot of current server metrics.
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveRooms:      h.activeRooms.Load(),
		TotalConnections: h.totalConnections.Load(),
	}
}

// RoomEnded decrements the active room counter. Call when a room goroutine exits.
func (h *Hub) RoomEnded() {
	h.activeRooms.Add(-1)
}

// reserveRoom claims a room slot, failing once maxRooms are active. The
// claim and the check are one atomic step so concurrent accepts cannot
// overshoot the cap.
func (h *Hub) reserveRoom() bool {
	if h.activeRooms.Add(1) > h.maxRooms {
		h.activeRooms.Add(-1)
		return false
	}
	return true
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}

	ws, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
		log.Printf("ws accept error: %v", err)
		return
	}

	// Pointer, resize and ping messages are all well under a kilobyte.
	ws.SetReadLimit(readLimit)

	if !h.reserveRoom() {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
		log.Printf("max rooms reached, rejecting %s", ip)
		ws.Close(websocket.StatusTryAgainLater, "server full")
		return
	}

	h.totalConnections.Add(1)
	id := fmt.Sprintf("session-%d", h.nextID.Add(1))
	var limiter MessageLimiter
	if h.limiter != nil {
		limiter = h.limiter
	}
	conn := NewConn(ws, id, ip, limiter)
	conn.Name = sanitizeName(r.URL.Query().Get("name"))
	log.Printf("new connection: %s [%s] from %s (total: %d)", id, conn.Name, ip, h.totalConnections.Load())

	// Use background context so connection lives beyond HTTP handler
	go conn.WriteLoop(context.Background())

	go func() {
		<-conn.Done()
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
	}()

	h.creator.CreateRoom(conn)

	// Block until the connection is closed — keeps HTTP handler alive
	// which keeps the underlying TCP connection open for WebSocket
	<-conn.Done()
	log.Printf("connection closed: %s (dropped %d)", id, conn.Dropped())
}
