package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

type visitor struct {
	connections int
	tokens      int
	lastRefill  time.Time
}

// IPRateLimiter caps simultaneous sessions per IP and meters inbound
// messages with a token bucket. Pointer streams are bursty: a mouse can emit
// several hundred moves per second, far more than the tick rate can use.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time

	maxConnsPerIP int
	msgRate       int
	msgWindow     time.Duration
}

// NewIPRateLimiter creates a rate limiter.
//   - maxConnsPerIP: max simultaneous WebSocket connections per IP
//   - msgRate: max messages allowed per msgWindow
//   - msgWindow: time window for message rate
func NewIPRateLimiter(maxConnsPerIP, msgRate int, msgWindow time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           time.Now,
		maxConnsPerIP: maxConnsPerIP,
		msgRate:       msgRate,
		msgWindow:     msgWindow,
	}
}

// ConnectAllowed checks if an IP can open a new connection.
// If allowed, increments the connection count and returns true.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{
			connections: 1,
			tokens:      rl.msgRate,
			lastRefill:  rl.now(),
		}
		return true
	}
	if v.connections >= rl.maxConnsPerIP {
		return false
	}
	v.connections++
	return true
}

// Disconnect decrements the connection count for an IP.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok && v.connections > 0 {
		v.connections--
	}
}

// MessageAllowed spends one token, refilling msgRate tokens per elapsed
// msgWindow.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{
			tokens:     rl.msgRate - 1,
			lastRefill: now,
		}
		return true
	}

	if elapsed := now.Sub(v.lastRefill); elapsed >= rl.msgWindow {
		windows := int(elapsed / rl.msgWindow)
		v.tokens = min(v.tokens+windows*rl.msgRate, rl.msgRate)
		v.lastRefill = v.lastRefill.Add(time.Duration(windows) * rl.msgWindow)
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// Connections reports the open connections for ip.
func (rl *IPRateLimiter) Connections(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.visitors[ip]; ok {
		return v.connections
	}
	return 0
}

// Sweep forgets visitors with no open connection and returns how many went.
func (rl *IPRateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, v := range rl.visitors {
		if v.connections <= 0 {
			delete(rl.visitors, ip)
			n++
		}
	}
	return n
}

// RunCleanup sweeps every five minutes until ctx is done.
func (rl *IPRateLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// RealIP extracts the client IP from the request.
// Checks X-Forwarded-For (for reverse proxies) then RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if comma := strings.Index(xff, ","); comma > 0 {
			return strings.TrimSpace(xff[:comma])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
