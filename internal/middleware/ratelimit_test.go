package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(maxConns, rate int) (*IPRateLimiter, *clock) {
	c := &clock{t: time.Unix(1700000000, 0)}
	rl := NewIPRateLimiter(maxConns, rate, time.Second)
	rl.now = c.now
	return rl, c
}

func TestConnectAllowedCapsPerIP(t *testing.T) {
	rl, _ := newTestLimiter(2, 10)
	if !rl.ConnectAllowed("1.2.3.4") || !rl.ConnectAllowed("1.2.3.4") {
		t.Fatal("first two connections rejected")
	}
	if rl.ConnectAllowed("1.2.3.4") {
		t.Error("third connection allowed")
	}
	if !rl.ConnectAllowed("5.6.7.8") {
		t.Error("other IP rejected")
	}

	rl.Disconnect("1.2.3.4")
	if rl.Connections("1.2.3.4") != 1 {
		t.Errorf("connections = %d, want 1", rl.Connections("1.2.3.4"))
	}
	if !rl.ConnectAllowed("1.2.3.4") {
		t.Error("connection rejected after a disconnect")
	}
}

func TestDisconnectNeverGoesNegative(t *testing.T) {
	rl, _ := newTestLimiter(1, 10)
	rl.Disconnect("9.9.9.9")
	rl.ConnectAllowed("9.9.9.9")
	rl.Disconnect("9.9.9.9")
	rl.Disconnect("9.9.9.9")
	if n := rl.Connections("9.9.9.9"); n != 0 {
		t.Errorf("connections = %d", n)
	}
}

func TestMessageAllowedRefillsPerWindow(t *testing.T) {
	rl, c := newTestLimiter(1, 3)
	ip := "1.1.1.1"
	rl.ConnectAllowed(ip)

	for i := 0; i < 3; i++ {
		if !rl.MessageAllowed(ip) {
			t.Fatalf("message %d rejected", i)
		}
	}
	if rl.MessageAllowed(ip) {
		t.Fatal("bucket should be empty")
	}

	c.t = c.t.Add(999 * time.Millisecond)
	if rl.MessageAllowed(ip) {
		t.Error("refilled before a full window")
	}

	c.t = c.t.Add(10 * time.Second)
	allowed := 0
	for rl.MessageAllowed(ip) {
		allowed++
	}
	if allowed != 3 {
		t.Errorf("allowed %d after a long idle, want the cap of 3", allowed)
	}
}

func TestMessageAllowedUnknownIP(t *testing.T) {
	rl, _ := newTestLimiter(1, 2)
	if !rl.MessageAllowed("2.2.2.2") || !rl.MessageAllowed("2.2.2.2") {
		t.Fatal("fresh IP rejected")
	}
	if rl.MessageAllowed("2.2.2.2") {
		t.Error("third message allowed")
	}
}

func TestSweepForgetsIdleVisitors(t *testing.T) {
	rl, _ := newTestLimiter(2, 2)
	rl.ConnectAllowed("a")
	rl.ConnectAllowed("b")
	rl.Disconnect("b")
	rl.MessageAllowed("c")

	if n := rl.Sweep(); n != 2 {
		t.Errorf("swept %d, want 2", n)
	}
	if rl.Connections("a") != 1 {
		t.Error("swept a visitor with an open connection")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name, xff, remote, want string
	}{
		{"remote addr", "", "10.0.0.1:5555", "10.0.0.1"},
		{"remote without port", "", "10.0.0.1", "10.0.0.1"},
		{"forwarded", "203.0.113.7", "10.0.0.1:5555", "203.0.113.7"},
		{"forwarded chain", " 203.0.113.7 , 10.1.1.1", "10.0.0.1:5555", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := RealIP(r); got != tt.want {
				t.Errorf("RealIP = %q, want %q", got, tt.want)
			}
		})
	}
}
